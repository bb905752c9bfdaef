package chat

import (
	"sync"

	"github.com/google/uuid"

	"github.com/flockcast/engage/internal/domain/chat"
)

// Subscription is one subscriber's live view of a session's chat
// stream. Delivery runs on its own goroutine over an unbounded queue,
// so a slow consumer never blocks the appender or other subscribers.
type Subscription struct {
	id        string
	sessionID string

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []*chat.Message
	cancelled bool

	out    chan *chat.Message
	done   chan struct{}
	detach func(id string)
	once   sync.Once
}

func newSubscription(sessionID string, detach func(id string)) *Subscription {
	sub := &Subscription{
		id:        uuid.New().String(),
		sessionID: sessionID,
		out:       make(chan *chat.Message),
		done:      make(chan struct{}),
		detach:    detach,
	}
	sub.cond = sync.NewCond(&sub.mu)
	return sub
}

// SessionID returns the session this subscription is attached to.
func (s *Subscription) SessionID() string {
	return s.sessionID
}

// C returns the delivery channel. Messages arrive in ascending
// sequence order. The channel is closed after Cancel.
func (s *Subscription) C() <-chan *chat.Message {
	return s.out
}

// enqueue adds a message to the delivery queue. Called with the room
// lock held, which fixes the publish order across subscribers.
func (s *Subscription) enqueue(msg *chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	s.queue = append(s.queue, msg)
	s.cond.Signal()
}

// pump delivers queued messages in order until the subscription is
// cancelled.
func (s *Subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.cancelled {
			s.cond.Wait()
		}
		if s.cancelled {
			s.mu.Unlock()
			return
		}
		msg := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- msg:
		case <-s.done:
			return
		}
	}
}

// Cancel stops delivery and detaches the subscription from its room.
// A delivery already in flight may still arrive; nothing is delivered
// after that. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.mu.Lock()
		s.cancelled = true
		s.mu.Unlock()
		close(s.done)
		s.cond.Broadcast()
		if s.detach != nil {
			s.detach(s.id)
		}
	})
}
