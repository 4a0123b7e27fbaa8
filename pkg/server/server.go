// Package server is the HTTP inspector: it keeps one layout engine per
// session and exposes the engine operations as a JSON API.
//
// A session is created from a chart document posted in the request body or
// loaded from the configured store. Each session owns an engine.Engine
// guarded by its own mutex, so requests against different sessions run in
// parallel while requests against one session are serialized.
//
// # Routes
//
//	GET    /healthz
//	GET    /api/v1/charts
//	GET    /api/v1/charts/{chartID}
//	PUT    /api/v1/charts/{chartID}
//	DELETE /api/v1/charts/{chartID}
//	POST   /api/v1/sessions                      ?chart=&width=
//	GET    /api/v1/sessions/{sessionID}          full layout snapshot
//	PUT    /api/v1/sessions/{sessionID}          replace the chart, returns the diff
//	DELETE /api/v1/sessions/{sessionID}
//	GET    /api/v1/sessions/{sessionID}/viewport ?offset=&height=&overscan=
//	GET    /api/v1/sessions/{sessionID}/diff     ?all=
//	POST   /api/v1/sessions/{sessionID}/rows/{rowID}/{action}   expand, collapse or toggle
//	GET    /api/v1/sessions/{sessionID}/dependencies.{format}   dot or svg
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/timelane/pkg/cache"
	"github.com/matzehuels/timelane/pkg/depgraph"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/observability"
	"github.com/matzehuels/timelane/pkg/store"
)

// Defaults for unset Config fields.
const (
	DefaultSessionTTL = 30 * time.Minute
	DefaultRenderTTL  = 24 * time.Hour
	DefaultTimeout    = 60 * time.Second
	maxBodyBytes      = 16 << 20
)

// Config configures a Server. Only Options is required; a nil Store
// disables the chart endpoints and session creation by chart id.
type Config struct {
	Options layout.Options
	Store   store.Store
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger

	// SessionTTL is how long an idle session survives.
	SessionTTL time.Duration
	// RenderTTL is how long a rendered dependency graph stays cached.
	RenderTTL time.Duration

	// Render turns DOT into SVG. It defaults to depgraph.RenderSVG.
	Render func(ctx context.Context, dot string) ([]byte, error)
}

// Server serves the inspector API.
type Server struct {
	cfg      Config
	logger   *log.Logger
	hooks    observability.ServerHooks
	sessions *sessions
}

// New fills in Config defaults and creates a Server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.RenderTTL <= 0 {
		cfg.RenderTTL = DefaultRenderTTL
	}
	if cfg.Render == nil {
		cfg.Render = depgraph.RenderSVG
	}
	return &Server{
		cfg:      cfg,
		logger:   cfg.Logger,
		hooks:    observability.Server(),
		sessions: newSessions(cfg.SessionTTL),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(DefaultTimeout))
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/charts", func(r chi.Router) {
			r.Get("/", s.handleListCharts)
			r.Get("/{chartID}", s.handleGetChart)
			r.Put("/{chartID}", s.handlePutChart)
			r.Delete("/{chartID}", s.handleDeleteChart)
		})
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleLayout)
				r.Put("/", s.handleUpdate)
				r.Delete("/", s.handleDeleteSession)
				r.Get("/viewport", s.handleViewport)
				r.Get("/diff", s.handleDiff)
				r.Post("/rows/{rowID}/{action}", s.handlePatch)
				r.Get("/dependencies.{format}", s.handleDependencies)
			})
		})
	})
	return r
}

// Run expires idle sessions once a minute until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			for _, id := range s.sessions.sweep(now) {
				s.logger.Debug("session expired", "session", id)
				s.hooks.OnSession(ctx, "expire", id)
			}
		}
	}
}

// observe logs every request and reports responses to the server hooks
// under their route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
