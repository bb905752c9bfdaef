// Package engagement binds a registry selection to one chat stream and
// one presence counter, producing the handle a client attaches to.
package engagement

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/flockcast/engage/internal/app/chat"
	"github.com/flockcast/engage/internal/app/media"
	"github.com/flockcast/engage/internal/app/presence"
	"github.com/flockcast/engage/internal/app/registry"
	"github.com/flockcast/engage/internal/domain/session"
)

var (
	ErrNoLiveSession   = errors.New("no session is live")
	ErrSessionNotFound = errors.New("session not found")
)

// Manager is the composition root for viewer engagement.
type Manager struct {
	registry *registry.Registry
	chat     *chat.Stream
	presence *presence.Counter
	resolver *media.Resolver
}

// NewManager creates an engagement manager over the given components.
func NewManager(reg *registry.Registry, stream *chat.Stream, counter *presence.Counter, resolver *media.Resolver) *Manager {
	return &Manager{
		registry: reg,
		chat:     stream,
		presence: counter,
		resolver: resolver,
	}
}

// AttachCurrent attaches to whichever session is live right now.
// Returns ErrNoLiveSession when nothing is live.
func (m *Manager) AttachCurrent(ctx context.Context) (*Session, error) {
	s, err := m.registry.Current(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNoLiveSession
	}
	return m.attach(ctx, s)
}

// Attach attaches to a specific session id, e.g. one handed to the
// client by a push notification. Returns ErrSessionNotFound for an
// unknown id.
func (m *Manager) Attach(ctx context.Context, id string) (*Session, error) {
	s, err := m.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.Wrapf(ErrSessionNotFound, "id %s", id)
	}
	return m.attach(ctx, s)
}

// attach subscribes to chat and joins presence for the selected
// session. The caller owns the returned handle and must Detach it.
func (m *Manager) attach(ctx context.Context, s *session.Session) (*Session, error) {
	sub, err := m.chat.Subscribe(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	m.presence.Join(s.ID)
	return &Session{
		info:    s,
		manager: m,
		sub:     sub,
	}, nil
}
