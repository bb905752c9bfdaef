package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/flockcast/engage/internal/domain/session"
)

type createSessionRequest struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ScheduledTime string `json:"scheduled_time"`
	MediaURL      string `json:"media_url"`
	MediaHD       string `json:"media_hd"`
	MediaSD       string `json:"media_sd"`
	Live          bool   `json:"live"` // Create directly in the live state
}

// handleCreateSession creates a session in the scheduled state, or
// directly live when requested.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MediaURL == "" {
		respondError(w, http.StatusBadRequest, "media_url is required")
		return
	}

	scheduled := s.now()
	if req.ScheduledTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduledTime)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid scheduled_time, want RFC3339")
			return
		}
		scheduled = parsed
	}

	sess := &session.Session{
		ID:            req.ID,
		Title:         req.Title,
		State:         session.StateScheduled,
		ScheduledTime: scheduled,
		Media: session.MediaRef{
			URL: req.MediaURL,
			HD:  req.MediaHD,
			SD:  req.MediaSD,
		},
	}
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if req.Live {
		now := s.now()
		sess.State = session.StateLive
		sess.StartTime = &now
	}

	if err := s.admin.SaveSession(r.Context(), sess); err != nil {
		respondAppError(w, err)
		return
	}
	zlog.Info().Str("session_id", sess.ID).Str("state", sess.State.String()).Msg("session created")
	respondJSON(w, http.StatusCreated, toSessionPayload(sess))
}

// handleStartSession transitions a scheduled session to live.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.admin.FindByID(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	if sess == nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if sess.State == session.StateEnded {
		respondError(w, http.StatusConflict, "session has already ended")
		return
	}

	now := s.now()
	sess.State = session.StateLive
	if sess.StartTime == nil {
		sess.StartTime = &now
	}
	if err := s.admin.SaveSession(r.Context(), sess); err != nil {
		respondAppError(w, err)
		return
	}
	zlog.Info().Str("session_id", sess.ID).Msg("session started")
	respondJSON(w, http.StatusOK, toSessionPayload(sess))
}

type endSessionRequest struct {
	HasRecording bool `json:"has_recording"`
}

// handleEndSession transitions a live session to ended and zeroes its
// current viewer count. Peak and total views are kept as history.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.admin.FindByID(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	if sess == nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if sess.State == session.StateEnded {
		respondError(w, http.StatusConflict, "session has already ended")
		return
	}

	var req endSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	now := s.now()
	sess.State = session.StateEnded
	sess.EndTime = &now
	sess.HasRecording = req.HasRecording
	if err := s.admin.SaveSession(r.Context(), sess); err != nil {
		respondAppError(w, err)
		return
	}

	s.presence.Reset(sess.ID)
	zlog.Info().Str("session_id", sess.ID).Bool("has_recording", sess.HasRecording).Msg("session ended")
	respondJSON(w, http.StatusOK, toSessionPayload(sess))
}
