// Package session provides the broadcast Session domain entity.
package session

import "time"

// State represents the broadcast lifecycle state.
// Transitions (Scheduled -> Live -> Ended) are written by the admin
// surface; the engagement core only observes them.
type State int

const (
	StateScheduled State = iota // Announced but not yet started
	StateLive                   // Currently broadcasting
	StateEnded                  // Finished
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateLive:
		return "live"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MediaRef holds the source-of-truth media URL plus optional quality variants.
type MediaRef struct {
	URL string // Base URL, always set
	HD  string // High-quality variant (optional)
	SD  string // Low-bandwidth variant (optional)
}

// Session represents one live or scheduled broadcast.
type Session struct {
	ID            string     // Externally assigned identifier
	Title         string     // Display title
	State         State      // Lifecycle state
	ScheduledTime time.Time  // Announced start
	StartTime     *time.Time // Set when the broadcast goes live
	EndTime       *time.Time // Set when the broadcast ends
	Media         MediaRef   // Raw media reference
	HasRecording  bool       // Set only after Ended
}

// IsLive reports whether the session is broadcasting at the given instant.
func (s *Session) IsLive(now time.Time) bool {
	return s.State == StateLive && s.StartTime != nil && !s.StartTime.After(now)
}

// HasEnded reports whether the broadcast has finished.
func (s *Session) HasEnded() bool {
	return s.State == StateEnded
}
