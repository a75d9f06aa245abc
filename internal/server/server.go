// Package server is the recipe JSON API that the gateway's HTTP client talks
// to. It stores recipes in an internal/store backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/inovacc/cookbook/internal/store"
)

// Config holds the API server configuration
type Config struct {
	Addr string

	// AllowedOrigins feeds the CORS handler; empty allows any origin
	AllowedOrigins []string
}

// DefaultConfig returns the default API server configuration
func DefaultConfig() Config {
	return Config{Addr: ":8080"}
}

// Server serves the recipe API.
type Server struct {
	config     Config
	store      store.Store
	log        *slog.Logger
	metrics    *metrics
	now        func() time.Time
	router     *mux.Router
	handler    http.Handler
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and error logging.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithClock replaces time.Now for the server-owned date fields.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates an API server on top of st.
func New(config Config, st store.Store, opts ...Option) *Server {
	s := &Server{
		config:  config,
		store:   st,
		log:     slog.New(slog.DiscardHandler),
		metrics: newMetrics(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router = mux.NewRouter()
	s.setupRoutes(s.router)

	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	s.handler = s.loggingMiddleware(cors(s.router))

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled, then shuts down.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info("recipe API listening", slog.String("addr", listener.Addr().String()))

	errc := make(chan error, 1)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}

		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	return s.Shutdown(context.Background()) //nolint:contextcheck // parent context cancelled, use background for shutdown
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s.log.Info("shutting down recipe API")

	return s.httpServer.Shutdown(shutdownCtx)
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests and records request metrics
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		s.metrics.observe(r.Method, s.routeName(r), rec.status, elapsed)
		s.log.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", elapsed))
	})
}

// routeName returns the matched route template so metrics are not labelled
// by recipe ID.
func (s *Server) routeName(r *http.Request) string {
	var match mux.RouteMatch
	if s.router.Match(r, &match) && match.Route != nil {
		if tpl, err := match.Route.GetPathTemplate(); err == nil {
			return tpl
		}
	}

	return "other"
}
