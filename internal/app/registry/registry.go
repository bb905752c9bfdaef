// Package registry answers which broadcast session is live right now.
package registry

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/flockcast/engage/internal/domain/session"
)

// ErrStoreUnavailable marks failures of the backing session store.
// The registry performs no retries itself; retry policy belongs to the
// caller.
var ErrStoreUnavailable = errors.New("session store unavailable")

// SessionStore is the read surface of the external session document
// store. FindByID returns nil without an error for an unknown id.
type SessionStore interface {
	FindLive(ctx context.Context) ([]*session.Session, error)
	FindByID(ctx context.Context, id string) (*session.Session, error)
	FindScheduledAfter(ctx context.Context, after time.Time) ([]*session.Session, error)
	FindRecorded(ctx context.Context) ([]*session.Session, error)
}

// Registry selects the current session and exposes session lookup.
// It holds no session state of its own: every call queries the store,
// so a state transition is never served stale.
type Registry struct {
	store SessionStore
	now   func() time.Time
}

// New creates a registry over the given store.
func New(store SessionStore) *Registry {
	return &Registry{
		store: store,
		now:   time.Now,
	}
}

// Current returns the single live session, or nil when nothing is live.
// At most one session should be live system-wide; when the store holds
// more (a consistency violation the registry must tolerate), the one
// with the latest start time wins and the anomaly is logged. Callers
// always get a single attachment point, never an error for this case.
func (r *Registry) Current(ctx context.Context) (*session.Session, error) {
	live, err := r.store.FindLive(ctx)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to query live sessions"), ErrStoreUnavailable)
	}

	now := r.now()
	var current *session.Session
	eligible := 0
	for _, s := range live {
		if !s.IsLive(now) {
			continue
		}
		eligible++
		if current == nil || s.StartTime.After(*current.StartTime) {
			current = s
		}
	}

	if eligible > 1 {
		zlog.Warn().
			Int("live_count", eligible).
			Str("selected", current.ID).
			Msg("more than one live session in store, selecting latest start time")
	}
	return current, nil
}

// Get returns the session with the given id, or nil when unknown.
// Used when a client was handed a specific id, e.g. from a push
// notification.
func (r *Registry) Get(ctx context.Context, id string) (*session.Session, error) {
	s, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to look up session %s", id), ErrStoreUnavailable)
	}
	return s, nil
}

// Upcoming returns scheduled sessions starting after the given time,
// ordered by scheduled time ascending. The result is a finite snapshot;
// calling again re-queries the store.
func (r *Registry) Upcoming(ctx context.Context, after time.Time) ([]*session.Session, error) {
	scheduled, err := r.store.FindScheduledAfter(ctx, after)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to query upcoming sessions"), ErrStoreUnavailable)
	}
	sort.Slice(scheduled, func(i, j int) bool {
		return scheduled[i].ScheduledTime.Before(scheduled[j].ScheduledTime)
	})
	return scheduled, nil
}

// Recordings returns ended sessions with a recording, ordered by end
// time descending.
func (r *Registry) Recordings(ctx context.Context) ([]*session.Session, error) {
	ended, err := r.store.FindRecorded(ctx)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to query recordings"), ErrStoreUnavailable)
	}
	sort.Slice(ended, func(i, j int) bool {
		ti, tj := ended[i].EndTime, ended[j].EndTime
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.After(*tj)
	})
	return ended, nil
}
