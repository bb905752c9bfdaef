package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flockcast/engage/internal/app/chat"
	"github.com/flockcast/engage/internal/app/engagement"
	"github.com/flockcast/engage/internal/app/media"
	"github.com/flockcast/engage/internal/app/presence"
	"github.com/flockcast/engage/internal/app/registry"
	"github.com/flockcast/engage/internal/domain/session"
	"github.com/flockcast/engage/internal/infra/config"
)

// memStore is an in-memory session store serving both the registry read
// surface and the admin write surface.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*session.Session)}
}

func (m *memStore) FindLive(context.Context) ([]*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*session.Session
	for _, s := range m.sessions {
		if s.State == session.StateLive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id], nil
}

func (m *memStore) FindScheduledAfter(_ context.Context, after time.Time) ([]*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*session.Session
	for _, s := range m.sessions {
		if s.State == session.StateScheduled && s.ScheduledTime.After(after) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) FindRecorded(context.Context) ([]*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*session.Session
	for _, s := range m.sessions {
		if s.State == session.StateEnded && s.HasRecording {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) SaveSession(_ context.Context, sess *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

const testAdminToken = "test-admin-token"

func newTestHandler(t *testing.T, store *memStore) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.Admin.Token = testAdminToken

	reg := registry.New(store)
	stream := chat.NewStream(nil, chat.Config{})
	counter := presence.NewCounter()
	resolver := media.Default()
	engage := engagement.NewManager(reg, stream, counter, resolver)

	return NewServer(cfg, reg, stream, counter, resolver, engage, store).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func adminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminToken}
}

func TestCurrentSessionNotFoundWhenNothingLive(t *testing.T) {
	h := newTestHandler(t, newMemStore())

	rec := doJSON(t, h, http.MethodGet, "/v1/sessions/current", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCurrentSession(t *testing.T) {
	store := newMemStore()
	start := time.Now().Add(-time.Hour)
	require.NoError(t, store.SaveSession(context.Background(), &session.Session{
		ID:        "s1",
		Title:     "Morning Broadcast",
		State:     session.StateLive,
		StartTime: &start,
		Media:     session.MediaRef{URL: "https://cdn.example.com/live.m3u8"},
	}))
	h := newTestHandler(t, store)

	rec := doJSON(t, h, http.MethodGet, "/v1/sessions/current", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got sessionPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, "live", got.State)
}

func TestAdminRequiresToken(t *testing.T) {
	h := newTestHandler(t, newMemStore())

	rec := doJSON(t, h, http.MethodPost, "/admin/sessions", map[string]any{"media_url": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/admin/sessions", map[string]any{"media_url": "x"},
		map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminSessionLifecycle(t *testing.T) {
	store := newMemStore()
	h := newTestHandler(t, store)

	// Create scheduled
	rec := doJSON(t, h, http.MethodPost, "/admin/sessions", map[string]any{
		"id":        "s1",
		"title":     "Evening Broadcast",
		"media_url": "https://youtu.be/abc123",
	}, adminHeaders())
	require.Equal(t, http.StatusCreated, rec.Code)

	var created sessionPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "scheduled", created.State)

	// Start
	rec = doJSON(t, h, http.MethodPost, "/admin/sessions/s1/start", nil, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/sessions/current", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// End with a recording
	rec = doJSON(t, h, http.MethodPost, "/admin/sessions/s1/end", map[string]any{
		"has_recording": true,
	}, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/sessions/current", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/recordings", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recordings []sessionPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recordings))
	require.Len(t, recordings, 1)
	assert.Equal(t, "s1", recordings[0].ID)
}

func TestStartEndedSessionConflicts(t *testing.T) {
	store := newMemStore()
	end := time.Now()
	require.NoError(t, store.SaveSession(context.Background(), &session.Session{
		ID:      "s1",
		State:   session.StateEnded,
		EndTime: &end,
		Media:   session.MediaRef{URL: "u"},
	}))
	h := newTestHandler(t, store)

	rec := doJSON(t, h, http.MethodPost, "/admin/sessions/s1/start", nil, adminHeaders())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEndEndedSessionPreservesRecordingFlag(t *testing.T) {
	store := newMemStore()
	start := time.Now().Add(-time.Hour)
	require.NoError(t, store.SaveSession(context.Background(), &session.Session{
		ID: "s1", State: session.StateLive, StartTime: &start,
		Media: session.MediaRef{URL: "u"},
	}))
	h := newTestHandler(t, store)

	rec := doJSON(t, h, http.MethodPost, "/admin/sessions/s1/end", map[string]any{
		"has_recording": true,
	}, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	// A repeated end without a body must not clear the recording flag
	rec = doJSON(t, h, http.MethodPost, "/admin/sessions/s1/end", nil, adminHeaders())
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/sessions/s1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got sessionPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.HasRecording)
}

func TestChatAppendAndHistory(t *testing.T) {
	store := newMemStore()
	start := time.Now().Add(-time.Hour)
	require.NoError(t, store.SaveSession(context.Background(), &session.Session{
		ID: "s1", State: session.StateLive, StartTime: &start,
		Media: session.MediaRef{URL: "u"},
	}))
	h := newTestHandler(t, store)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/chat", map[string]any{
		"author_id":   "u1",
		"author_name": "Ann",
		"body":        "Hello",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg messagePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, uint64(1), msg.Sequence)

	// Empty body is a validation error
	rec = doJSON(t, h, http.MethodPost, "/v1/sessions/s1/chat", map[string]any{
		"author_id": "u1",
		"body":      "  ",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/sessions/s1/chat", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []messagePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "Hello", history[0].Body)
}

func TestPresenceEndpoints(t *testing.T) {
	h := newTestHandler(t, newMemStore())

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/s1/presence/join", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state presencePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, 1, state.CurrentViewers)

	rec = doJSON(t, h, http.MethodPost, "/v1/sessions/s1/presence/leave", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/sessions/s1/presence", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, 0, state.CurrentViewers)
	assert.Equal(t, 1, state.PeakViewers)
}

func TestClassifyMedia(t *testing.T) {
	h := newTestHandler(t, newMemStore())

	rec := doJSON(t, h, http.MethodPost, "/v1/media/classify", map[string]any{
		"url": "https://youtu.be/dQw4w9WgXcQ",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var d descriptorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "embeddable_player", d.Kind)
	assert.Equal(t, "youtube", d.ProviderHint)
	assert.True(t, d.Streaming)

	// Unclassifiable URLs are still a 200
	rec = doJSON(t, h, http.MethodPost, "/v1/media/classify", map[string]any{
		"url": "https://example.com/about",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "unsupported", d.Kind)
}

func TestSessionMediaQuality(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.SaveSession(context.Background(), &session.Session{
		ID:    "s1",
		State: session.StateScheduled,
		Media: session.MediaRef{
			URL: "https://cdn.example.com/live.m3u8",
			HD:  "https://cdn.example.com/live_hd.m3u8",
		},
	}))
	h := newTestHandler(t, store)

	rec := doJSON(t, h, http.MethodGet, "/v1/sessions/s1/media?quality=hd", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var d descriptorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "direct_stream", d.Kind)
	assert.Equal(t, "https://cdn.example.com/live_hd.m3u8", d.PlaybackURL)
	assert.Equal(t, "hd", d.QualityUsed)
}
