// Package chat provides the ChatMessage domain entity.
package chat

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// DefaultMaxBodyRunes is the chat body length bound used when no
// explicit limit is configured.
const DefaultMaxBodyRunes = 500

var (
	ErrEmptyBody   = errors.New("chat body is empty")
	ErrBodyTooLong = errors.New("chat body exceeds the length limit")
)

// Message represents one chat entry scoped to a session.
// Messages are immutable once appended and retained for the life
// of the session.
type Message struct {
	ID         string    // UUID assigned at append time
	SessionID  string    // Owning broadcast session
	AuthorID   string    // Opaque identity-provider ID
	AuthorName string    // Display name at append time
	Body       string    // Message text
	Sequence   uint64    // Per-session monotonic order, starts at 1
	CreatedAt  time.Time // Append time
}

// ValidateBody checks the body bounds. A non-positive limit falls back
// to DefaultMaxBodyRunes.
func ValidateBody(body string, limit int) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	if limit <= 0 {
		limit = DefaultMaxBodyRunes
	}
	if utf8.RuneCountInString(body) > limit {
		return errors.Wrapf(ErrBodyTooLong, "limit is %d characters", limit)
	}
	return nil
}
