package engagement

import (
	"context"
	"sync"

	"github.com/flockcast/engage/internal/app/chat"
	"github.com/flockcast/engage/internal/app/media"
	"github.com/flockcast/engage/internal/app/presence"
	domainchat "github.com/flockcast/engage/internal/domain/chat"
	"github.com/flockcast/engage/internal/domain/session"
)

// Session is one client's attachment to a broadcast: a presence
// membership plus a chat subscription bound to a registry selection.
type Session struct {
	info    *session.Session
	manager *Manager
	sub     *chat.Subscription
	once    sync.Once
}

// Info returns the session the handle is attached to, as selected at
// attach time. It is not refreshed; re-attach to observe a transition.
func (s *Session) Info() *session.Session {
	return s.info
}

// Chat returns the live chat subscription for this attachment.
func (s *Session) Chat() *chat.Subscription {
	return s.sub
}

// Say appends a chat message to the attached session's stream.
func (s *Session) Say(ctx context.Context, authorID, authorName, body string) (*domainchat.Message, error) {
	return s.manager.chat.Append(ctx, s.info.ID, authorID, authorName, body)
}

// Presence returns the session's current viewer counters.
func (s *Session) Presence() presence.State {
	return s.manager.presence.Snapshot(s.info.ID)
}

// Media resolves the session's media reference at the wanted quality.
func (s *Session) Media(want media.Quality) media.Descriptor {
	return s.manager.resolver.Resolve(s.info.Media, want)
}

// Detach leaves presence and cancels the chat subscription.
// Callers must detach on disconnect; the core has no heartbeat of its
// own. Safe to call more than once.
func (s *Session) Detach() {
	s.once.Do(func() {
		s.sub.Cancel()
		s.manager.presence.Leave(s.info.ID)
	})
}
