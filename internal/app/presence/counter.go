// Package presence provides concurrency-safe viewer presence counting.
package presence

import "sync"

// State is the counter set for one session.
// PeakViewers never drops below CurrentViewers and TotalViews counts
// joins, not unique users.
type State struct {
	CurrentViewers int
	PeakViewers    int
	TotalViews     int
}

// Counter tracks viewer presence for any number of sessions.
// All mutating operations for one session run under that session's
// lock, so the join increment and the peak recompute form a single
// indivisible step.
type Counter struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu    sync.Mutex
	state State
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{
		sessions: make(map[string]*entry),
	}
}

// entryFor returns the per-session entry, creating it when create is set.
func (c *Counter) entryFor(sessionID string, create bool) *entry {
	c.mu.RLock()
	e, ok := c.sessions[sessionID]
	c.mu.RUnlock()
	if ok || !create {
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.sessions[sessionID]; ok {
		return e
	}
	e = &entry{}
	c.sessions[sessionID] = e
	return e
}

// Join records one viewer joining and returns the counters after the join.
func (c *Counter) Join(sessionID string) State {
	e := c.entryFor(sessionID, true)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.CurrentViewers++
	e.state.TotalViews++
	if e.state.CurrentViewers > e.state.PeakViewers {
		e.state.PeakViewers = e.state.CurrentViewers
	}
	return e.state
}

// Leave records one viewer leaving. The count is floored at zero: a
// leave without a matching join (crash, reconnect) must not drive the
// counter negative.
func (c *Counter) Leave(sessionID string) State {
	e := c.entryFor(sessionID, false)
	if e == nil {
		return State{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.CurrentViewers > 0 {
		e.state.CurrentViewers--
	}
	return e.state
}

// Snapshot returns the current counters without mutating them.
func (c *Counter) Snapshot(sessionID string) State {
	e := c.entryFor(sessionID, false)
	if e == nil {
		return State{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Reset zeroes the current viewer count when a session ends.
// PeakViewers and TotalViews are retained as historical record.
func (c *Counter) Reset(sessionID string) {
	e := c.entryFor(sessionID, false)
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.CurrentViewers = 0
}
