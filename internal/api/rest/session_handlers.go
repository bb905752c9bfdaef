package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleCurrentSession answers "what is live right now". An empty live
// selection is a 404, not an error: the client shows its schedule view.
func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	current, err := s.registry.Current(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	if current == nil {
		respondError(w, http.StatusNotFound, "no session is live")
		return
	}
	respondJSON(w, http.StatusOK, toSessionPayload(current))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.registry.Get(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	if sess == nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, toSessionPayload(sess))
}

// handleUpcomingSessions lists scheduled sessions after an optional
// RFC3339 "after" query parameter (default: now).
func (s *Server) handleUpcomingSessions(w http.ResponseWriter, r *http.Request) {
	after := s.now()
	if v := r.URL.Query().Get("after"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid after parameter, want RFC3339")
			return
		}
		after = parsed
	}

	upcoming, err := s.registry.Upcoming(r.Context(), after)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionPayloads(upcoming))
}

func (s *Server) handleRecordings(w http.ResponseWriter, r *http.Request) {
	recordings, err := s.registry.Recordings(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionPayloads(recordings))
}
