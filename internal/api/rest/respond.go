package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/flockcast/engage/internal/app/engagement"
	"github.com/flockcast/engage/internal/app/media"
	"github.com/flockcast/engage/internal/app/presence"
	"github.com/flockcast/engage/internal/app/registry"
	domainchat "github.com/flockcast/engage/internal/domain/chat"
	"github.com/flockcast/engage/internal/domain/session"
)

type errorPayload struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorPayload{Error: msg})
}

// respondAppError maps core errors onto HTTP statuses per the error
// taxonomy: validation 400, missing 404, store unavailable 503.
func respondAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainchat.ErrEmptyBody), errors.Is(err, domainchat.ErrBodyTooLong):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engagement.ErrNoLiveSession), errors.Is(err, engagement.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, registry.ErrStoreUnavailable):
		zlog.Error().Err(err).Msg("session store unavailable")
		respondError(w, http.StatusServiceUnavailable, "session store unavailable")
	default:
		zlog.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

type sessionPayload struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	State         string  `json:"state"`
	ScheduledTime string  `json:"scheduled_time"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	MediaURL      string  `json:"media_url"`
	MediaHD       string  `json:"media_hd,omitempty"`
	MediaSD       string  `json:"media_sd,omitempty"`
	HasRecording  bool    `json:"has_recording"`
}

func toSessionPayload(s *session.Session) sessionPayload {
	p := sessionPayload{
		ID:            s.ID,
		Title:         s.Title,
		State:         s.State.String(),
		ScheduledTime: s.ScheduledTime.Format(time.RFC3339),
		MediaURL:      s.Media.URL,
		MediaHD:       s.Media.HD,
		MediaSD:       s.Media.SD,
		HasRecording:  s.HasRecording,
	}
	if s.StartTime != nil {
		v := s.StartTime.Format(time.RFC3339)
		p.StartTime = &v
	}
	if s.EndTime != nil {
		v := s.EndTime.Format(time.RFC3339)
		p.EndTime = &v
	}
	return p
}

func toSessionPayloads(sessions []*session.Session) []sessionPayload {
	out := make([]sessionPayload, len(sessions))
	for i, s := range sessions {
		out[i] = toSessionPayload(s)
	}
	return out
}

type messagePayload struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`
	Sequence   uint64 `json:"sequence"`
	CreatedAt  string `json:"created_at"`
}

func toMessagePayload(m *domainchat.Message) messagePayload {
	return messagePayload{
		ID:         m.ID,
		SessionID:  m.SessionID,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Body:       m.Body,
		Sequence:   m.Sequence,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339Nano),
	}
}

type presencePayload struct {
	CurrentViewers int `json:"current_viewers"`
	PeakViewers    int `json:"peak_viewers"`
	TotalViews     int `json:"total_views"`
}

func toPresencePayload(st presence.State) presencePayload {
	return presencePayload{
		CurrentViewers: st.CurrentViewers,
		PeakViewers:    st.PeakViewers,
		TotalViews:     st.TotalViews,
	}
}

type descriptorPayload struct {
	Kind         string `json:"kind"`
	PlaybackURL  string `json:"playback_url,omitempty"`
	ProviderHint string `json:"provider_hint,omitempty"`
	QualityUsed  string `json:"quality_used,omitempty"`
	Streaming    bool   `json:"streaming_service"`
}

func toDescriptorPayload(d media.Descriptor, streaming bool) descriptorPayload {
	return descriptorPayload{
		Kind:         d.Kind.String(),
		PlaybackURL:  d.PlaybackURL,
		ProviderHint: d.ProviderHint,
		QualityUsed:  string(d.QualityUsed),
		Streaming:    streaming,
	}
}
