// Package rest exposes the engagement core over HTTP.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	zlog "github.com/rs/zerolog/log"

	"github.com/flockcast/engage/internal/app/chat"
	"github.com/flockcast/engage/internal/app/engagement"
	"github.com/flockcast/engage/internal/app/media"
	"github.com/flockcast/engage/internal/app/presence"
	"github.com/flockcast/engage/internal/app/registry"
	"github.com/flockcast/engage/internal/domain/session"
	"github.com/flockcast/engage/internal/infra/config"
)

// AdminStore is the write surface used by the administrative handlers.
// Session state transitions happen only here; the engagement core
// observes them through the registry.
type AdminStore interface {
	FindByID(ctx context.Context, id string) (*session.Session, error)
	SaveSession(ctx context.Context, sess *session.Session) error
}

// Server wires the engagement components into an HTTP handler.
type Server struct {
	cfg      *config.Config
	registry *registry.Registry
	chat     *chat.Stream
	presence *presence.Counter
	resolver *media.Resolver
	engage   *engagement.Manager
	admin    AdminStore
	now      func() time.Time
}

// NewServer creates the HTTP server over the given components.
func NewServer(
	cfg *config.Config,
	reg *registry.Registry,
	stream *chat.Stream,
	counter *presence.Counter,
	resolver *media.Resolver,
	engage *engagement.Manager,
	admin AdminStore,
) *Server {
	return &Server{
		cfg:      cfg,
		registry: reg,
		chat:     stream,
		presence: counter,
		resolver: resolver,
		engage:   engage,
		admin:    admin,
		now:      time.Now,
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/sessions/current", s.handleCurrentSession)
		r.Get("/sessions/upcoming", s.handleUpcomingSessions)
		r.Get("/recordings", s.handleRecordings)
		r.Get("/live", s.handleLiveCurrent)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Get("/media", s.handleSessionMedia)
			r.Get("/live", s.handleLiveByID)

			r.Post("/chat", s.handleAppendChat)
			r.Get("/chat", s.handleChatHistory)
			r.Get("/chat/stream", s.handleChatStream)

			r.Post("/presence/join", s.handlePresenceJoin)
			r.Post("/presence/leave", s.handlePresenceLeave)
			r.Get("/presence", s.handlePresenceSnapshot)
		})

		r.Post("/media/classify", s.handleClassifyMedia)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/sessions", s.handleCreateSession)
		r.Post("/sessions/{sessionID}/start", s.handleStartSession)
		r.Post("/sessions/{sessionID}/end", s.handleEndSession)
	})

	return r
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zlog.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}

// requireAdmin checks the bearer token on administrative routes.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token != "Bearer "+s.cfg.Admin.Token {
			respondError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
