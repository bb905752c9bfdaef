// Package chat provides the append-only ordered chat stream with
// real-time fan-out to subscribers.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/flockcast/engage/internal/domain/chat"
)

// MessageStore persists chat messages. The stream writes through to the
// store before publishing; a failed write publishes nothing. Messages
// seeds a session's log when its room is first touched, so sequences
// continue where a previous process stopped.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *chat.Message) error
	Messages(ctx context.Context, sessionID string) ([]*chat.Message, error)
}

// Config holds stream configuration.
type Config struct {
	MaxBodyRunes int // Chat body length bound (0 uses the domain default)
}

// Stream maintains one ordered message log per session and fans new
// messages out to that session's subscribers. Sequence assignment and
// publish order are serialized on the session's lock; different
// sessions proceed fully in parallel.
type Stream struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	store  MessageStore
	config Config
}

type room struct {
	mu   sync.Mutex
	seq  uint64
	log  []*chat.Message
	subs map[string]*Subscription
}

// NewStream creates a stream backed by the given store. A nil store
// keeps messages in memory only.
func NewStream(store MessageStore, config Config) *Stream {
	return &Stream{
		rooms:  make(map[string]*room),
		store:  store,
		config: config,
	}
}

// roomFor returns the session's room, creating it on first touch.
// A new room is seeded from the store so the log and the sequence
// counter pick up where a previous process left them.
func (s *Stream) roomFor(ctx context.Context, sessionID string) (*room, error) {
	s.mu.RLock()
	r, ok := s.rooms[sessionID]
	s.mu.RUnlock()
	if ok {
		return r, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[sessionID]; ok {
		return r, nil
	}
	r = &room{subs: make(map[string]*Subscription)}
	if s.store != nil {
		persisted, err := s.store.Messages(ctx, sessionID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load chat history for session %s", sessionID)
		}
		r.log = persisted
		if n := len(persisted); n > 0 {
			r.seq = persisted[n-1].Sequence
		}
	}
	s.rooms[sessionID] = r
	return r, nil
}

// Append validates the body, assigns the next sequence for the session,
// persists the message and publishes it to all current subscribers.
// On a store failure nothing is published and the sequence is not
// consumed.
func (s *Stream) Append(ctx context.Context, sessionID, authorID, authorName, body string) (*chat.Message, error) {
	if err := chat.ValidateBody(body, s.config.MaxBodyRunes); err != nil {
		return nil, err
	}

	r, err := s.roomFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := &chat.Message{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Body:       body,
		Sequence:   r.seq + 1,
		CreatedAt:  time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.SaveMessage(ctx, msg); err != nil {
			return nil, errors.Wrap(err, "failed to persist chat message")
		}
	}

	r.seq = msg.Sequence
	r.log = append(r.log, msg)
	for _, sub := range r.subs {
		sub.enqueue(msg)
	}
	return msg, nil
}

// Subscribe attaches a new subscriber to the session's stream. The
// subscriber first receives the existing backlog in ascending sequence
// order, then new messages as they are appended. Registration and the
// backlog snapshot happen under the room lock, so a subscription sees
// no gaps and no duplicates for its lifetime.
func (s *Stream) Subscribe(ctx context.Context, sessionID string) (*Subscription, error) {
	r, err := s.roomFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := newSubscription(sessionID, func(id string) {
		s.detach(sessionID, id)
	})
	for _, msg := range r.log {
		sub.enqueue(msg)
	}
	r.subs[sub.id] = sub
	go sub.pump()
	return sub, nil
}

func (s *Stream) detach(sessionID, subID string) {
	s.mu.RLock()
	r, ok := s.rooms[sessionID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, subID)
}

// History returns a copy of the session's message log in sequence order.
func (s *Stream) History(ctx context.Context, sessionID string) ([]*chat.Message, error) {
	r, err := s.roomFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*chat.Message, len(r.log))
	copy(out, r.log)
	return out, nil
}

// SubscriberCount returns the number of active subscribers for a session.
func (s *Stream) SubscriberCount(sessionID string) int {
	s.mu.RLock()
	r, ok := s.rooms[sessionID]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
