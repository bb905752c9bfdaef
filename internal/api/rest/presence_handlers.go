package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handlePresenceJoin(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	state := s.presence.Join(sessionID)
	respondJSON(w, http.StatusOK, toPresencePayload(state))
}

func (s *Server) handlePresenceLeave(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	state := s.presence.Leave(sessionID)
	respondJSON(w, http.StatusOK, toPresencePayload(state))
}

func (s *Server) handlePresenceSnapshot(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	state := s.presence.Snapshot(sessionID)
	respondJSON(w, http.StatusOK, toPresencePayload(state))
}
