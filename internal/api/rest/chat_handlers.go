package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type appendChatRequest struct {
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`
}

func (s *Server) handleAppendChat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req appendChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AuthorID == "" {
		respondError(w, http.StatusBadRequest, "author_id is required")
		return
	}

	msg, err := s.chat.Append(r.Context(), sessionID, req.AuthorID, req.AuthorName, req.Body)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toMessagePayload(msg))
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	history, err := s.chat.History(r.Context(), sessionID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	out := make([]messagePayload, len(history))
	for i, m := range history {
		out[i] = toMessagePayload(m)
	}
	respondJSON(w, http.StatusOK, out)
}

// handleChatStream streams a session's chat over server-sent events:
// the backlog first, then the live tail. The subscription is cancelled
// when the client disconnects.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub, err := s.chat.Subscribe(r.Context(), sessionID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	defer sub.Cancel()
	sseHeaders(w)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-sub.C():
			if !open {
				return
			}
			if err := sseEvent(w, "message", toMessagePayload(msg)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
