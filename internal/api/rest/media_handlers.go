package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flockcast/engage/internal/app/media"
)

type classifyRequest struct {
	URL string `json:"url"`
}

// handleClassifyMedia classifies an arbitrary URL. An unsupported
// outcome is a normal 200 response, not an error: the client offers
// its open-externally fallback.
func (s *Server) handleClassifyMedia(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	d := s.resolver.Classify(req.URL)
	respondJSON(w, http.StatusOK, toDescriptorPayload(d, media.IsStreamingService(req.URL)))
}

// handleSessionMedia resolves a session's media reference at the
// quality given by the "quality" query parameter (hd, sd or auto).
func (s *Server) handleSessionMedia(w http.ResponseWriter, r *http.Request) {
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

	want := media.Quality(r.URL.Query().Get("quality"))
	if want == "" {
		want = media.QualityAuto
	}
	d := s.resolver.Resolve(sess.Media, want)
	respondJSON(w, http.StatusOK, toDescriptorPayload(d, media.IsStreamingService(d.PlaybackURL)))
}
