package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flockcast/engage/internal/app/engagement"
	"github.com/flockcast/engage/internal/app/media"
)

// livePayload is the initial event of a live attachment: the selected
// session, its resolved media and the presence counters after the join.
type livePayload struct {
	Session  sessionPayload    `json:"session"`
	Media    descriptorPayload `json:"media"`
	Presence presencePayload   `json:"presence"`
}

// handleLiveCurrent attaches the caller to whichever session is live
// right now: presence join plus chat subscription over one SSE stream.
// Disconnecting detaches (presence leave, subscription cancel).
func (s *Server) handleLiveCurrent(w http.ResponseWriter, r *http.Request) {
	attached, err := s.engage.AttachCurrent(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	s.serveLive(w, r, attached)
}

// handleLiveByID attaches to a specific session id, e.g. one delivered
// by a push notification.
func (s *Server) handleLiveByID(w http.ResponseWriter, r *http.Request) {
	attached, err := s.engage.Attach(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondAppError(w, err)
		return
	}
	s.serveLive(w, r, attached)
}

func (s *Server) serveLive(w http.ResponseWriter, r *http.Request, attached *engagement.Session) {
	defer attached.Detach()

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	want := media.Quality(r.URL.Query().Get("quality"))
	if want == "" {
		want = media.QualityAuto
	}

	sseHeaders(w)
	descriptor := attached.Media(want)
	initial := livePayload{
		Session:  toSessionPayload(attached.Info()),
		Media:    toDescriptorPayload(descriptor, media.IsStreamingService(descriptor.PlaybackURL)),
		Presence: toPresencePayload(attached.Presence()),
	}
	if err := sseEvent(w, "session", initial); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-attached.Chat().C():
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
