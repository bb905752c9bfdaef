package registry

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flockcast/engage/internal/domain/session"
)

// fakeStore serves canned sessions and can be told to fail.
type fakeStore struct {
	sessions []*session.Session
	err      error
}

func (f *fakeStore) FindLive(context.Context) ([]*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*session.Session
	for _, s := range f.sessions {
		if s.State == session.StateLive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindScheduledAfter(_ context.Context, after time.Time) ([]*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*session.Session
	for _, s := range f.sessions {
		if s.State == session.StateScheduled && s.ScheduledTime.After(after) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) FindRecorded(context.Context) ([]*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*session.Session
	for _, s := range f.sessions {
		if s.State == session.StateEnded && s.HasRecording {
			out = append(out, s)
		}
	}
	return out, nil
}

var testNow = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func newTestRegistry(store SessionStore) *Registry {
	r := New(store)
	r.now = func() time.Time { return testNow }
	return r
}

func ptr(t time.Time) *time.Time { return &t }

func TestCurrentSingleLiveSession(t *testing.T) {
	store := &fakeStore{sessions: []*session.Session{
		{ID: "s1", State: session.StateLive, StartTime: ptr(testNow.Add(-time.Hour))},
		{ID: "s2", State: session.StateScheduled, ScheduledTime: testNow.Add(time.Hour)},
	}}

	current, err := newTestRegistry(store).Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "s1", current.ID)
}

func TestCurrentNothingLive(t *testing.T) {
	store := &fakeStore{sessions: []*session.Session{
		{ID: "s1", State: session.StateScheduled, ScheduledTime: testNow.Add(time.Hour)},
	}}

	current, err := newTestRegistry(store).Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestCurrentIgnoresFutureStartTimes(t *testing.T) {
	store := &fakeStore{sessions: []*session.Session{
		{ID: "s1", State: session.StateLive, StartTime: ptr(testNow.Add(time.Minute))},
	}}

	current, err := newTestRegistry(store).Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestCurrentResolvesStoreAnomalyDeterministically(t *testing.T) {
	// Two live sessions violate the store invariant; the registry must
	// still hand the caller exactly one, the latest to start.
	store := &fakeStore{sessions: []*session.Session{
		{ID: "older", State: session.StateLive, StartTime: ptr(testNow.Add(-2 * time.Hour))},
		{ID: "newer", State: session.StateLive, StartTime: ptr(testNow.Add(-time.Hour))},
	}}

	reg := newTestRegistry(store)
	for i := 0; i < 3; i++ {
		current, err := reg.Current(context.Background())
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, "newer", current.ID)
	}
}

func TestCurrentStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}

	_, err := newTestRegistry(store).Current(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}

func TestGet(t *testing.T) {
	store := &fakeStore{sessions: []*session.Session{
		{ID: "s1", State: session.StateEnded},
	}}
	reg := newTestRegistry(store)

	found, err := reg.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "s1", found.ID)

	// Unknown id is an empty result, not an error
	missing, err := reg.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}

	_, err := newTestRegistry(store).Get(context.Background(), "s1")
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}

func TestUpcomingOrderedByScheduledTime(t *testing.T) {
	store := &fakeStore{sessions: []*session.Session{
		{ID: "late", State: session.StateScheduled, ScheduledTime: testNow.Add(3 * time.Hour)},
		{ID: "soon", State: session.StateScheduled, ScheduledTime: testNow.Add(time.Hour)},
		{ID: "past", State: session.StateScheduled, ScheduledTime: testNow.Add(-time.Hour)},
		{ID: "live", State: session.StateLive, StartTime: ptr(testNow)},
	}}

	upcoming, err := newTestRegistry(store).Upcoming(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "soon", upcoming[0].ID)
	assert.Equal(t, "late", upcoming[1].ID)
}

func TestRecordingsOrderedByEndTimeDescending(t *testing.T) {
	store := &fakeStore{sessions: []*session.Session{
		{ID: "old", State: session.StateEnded, HasRecording: true, EndTime: ptr(testNow.Add(-3 * time.Hour))},
		{ID: "new", State: session.StateEnded, HasRecording: true, EndTime: ptr(testNow.Add(-time.Hour))},
		{ID: "unrecorded", State: session.StateEnded, HasRecording: false, EndTime: ptr(testNow.Add(-2 * time.Hour))},
	}}

	recordings, err := newTestRegistry(store).Recordings(context.Background())
	require.NoError(t, err)
	require.Len(t, recordings, 2)
	assert.Equal(t, "new", recordings[0].ID)
	assert.Equal(t, "old", recordings[1].ID)
}
