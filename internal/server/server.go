// Package server is the HTTP embedding application for soundchunk editors.
//
// Graphs live in a [store.Store]. A session mounts an [editor.Editor] over a
// stored graph; connect and remove gestures flow through the editor and the
// accepted edge set is written back to the store. Gestures on one session
// are serialized, different sessions run in parallel.
//
// Routes:
//
//	GET    /healthz
//	GET    /version
//	GET    /metrics                      (when a metrics handler is set)
//	POST   /api/v1/graphs                 body: graph (JSON or YAML), empty for the seed
//	GET    /api/v1/graphs
//	GET    /api/v1/graphs/{id}            ?format=yaml
//	DELETE /api/v1/graphs/{id}
//	POST   /api/v1/graphs/{id}/validate   ?strict=true
//	GET    /api/v1/graphs/{id}/dot        ?detailed=true&direction=LR
//	GET    /api/v1/graphs/{id}/svg
//	POST   /api/v1/sessions               body: {"graph_id": "...", "direction": "TB"}
//	GET    /api/v1/sessions
//	GET    /api/v1/sessions/{id}
//	DELETE /api/v1/sessions/{id}
//	POST   /api/v1/sessions/{id}/connect
//	POST   /api/v1/sessions/{id}/remove
//	POST   /api/v1/sessions/{id}/layout
//	POST   /api/v1/sessions/{id}/audio/resume
//	POST   /api/v1/sessions/{id}/audio/suspend
//	GET    /api/v1/sessions/{id}/elements
//	GET    /api/v1/sessions/{id}/svg
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/soundchunk/pkg/buildinfo"
	"github.com/matzehuels/soundchunk/pkg/flow"
	"github.com/matzehuels/soundchunk/pkg/layout"
	"github.com/matzehuels/soundchunk/pkg/observability"
	"github.com/matzehuels/soundchunk/pkg/store"
)

const maxBodyBytes = 1 << 20

// Server serves the graph and session API.
type Server struct {
	store   store.Store
	logger  *log.Logger
	solver  layout.Solver
	jitter  flow.Jitter
	strict  bool
	dir     layout.Direction
	metrics http.Handler

	mu       sync.RWMutex
	sessions map[string]*session
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSolver sets the layout solver shared by all sessions.
func WithSolver(sv layout.Solver) Option { return func(s *Server) { s.solver = sv } }

// WithJitter sets the x jitter applied to laid-out nodes.
func WithJitter(j flow.Jitter) Option { return func(s *Server) { s.jitter = j } }

// WithStrict makes sessions reject self-loops and duplicate edges.
func WithStrict(on bool) Option { return func(s *Server) { s.strict = on } }

// WithDirection sets the direction new sessions are laid out in.
func WithDirection(d layout.Direction) Option { return func(s *Server) { s.dir = d } }

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option { return func(s *Server) { s.metrics = h } }

// New creates a server over st.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:    st,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		dir:      layout.TopBottom,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.solver == nil {
		s.solver = layout.NewGraphviz()
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/graphs", func(r chi.Router) {
			r.Post("/", s.createGraph)
			r.Get("/", s.listGraphs)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getGraph)
				r.Delete("/", s.deleteGraph)
				r.Post("/validate", s.validateGraph)
				r.Get("/dot", s.graphDOT)
				r.Get("/svg", s.graphSVG)
			})
		})
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Get("/", s.listSessions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.deleteSession)
				r.Post("/connect", s.connect)
				r.Post("/remove", s.remove)
				r.Post("/layout", s.layout)
				r.Post("/audio/resume", s.resumeAudio)
				r.Post("/audio/suspend", s.suspendAudio)
				r.Get("/elements", s.elements)
				r.Get("/svg", s.sessionSVG)
			})
		})
	})
	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully and
// unmounts every session.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close unmounts and drops every session.
func (s *Server) Close(ctx context.Context) {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		sess.editor.Unmount(ctx)
		sess.mu.Unlock()
	}
	observability.Server().OnSessionCount(ctx, 0)
}

// instrument reports each request to the server hooks, keyed by route
// pattern so ids do not explode label cardinality.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
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
		d := time.Since(start)
		observability.Server().OnRequest(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}
