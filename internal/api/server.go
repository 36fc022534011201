// Package api serves reconciliation results and satellite positions over
// HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kansaiyets/Satellite-tracker/internal/auth"
	"github.com/kansaiyets/Satellite-tracker/internal/health"
	"github.com/kansaiyets/Satellite-tracker/internal/httputil"
	"github.com/kansaiyets/Satellite-tracker/internal/metrics"
	"github.com/kansaiyets/Satellite-tracker/internal/propagation"
	"github.com/kansaiyets/Satellite-tracker/internal/reconcile"
)

// Runner produces a fresh reconciliation result. *reconcile.Engine
// satisfies it.
type Runner interface {
	Run(ctx context.Context) (*reconcile.Result, error)
}

// Config holds server settings.
type Config struct {
	Addr        string
	TrustProxy  bool
	Auth        auth.Config
	Propagation propagation.Config
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	store      *reconcile.Store
	runner     Runner
	config     Config
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(config Config, store *reconcile.Store, runner Runner, logger *slog.Logger) *Server {
	s := &Server{
		store:  store,
		runner: runner,
		config: config,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(func() bool { return store.Get() != nil }))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/matches", s.handleMatches)
	mux.HandleFunc("GET /api/v1/matches/options", s.handleOptions)
	mux.HandleFunc("GET /api/v1/positions", s.handlePositions)
	mux.HandleFunc("POST /api/v1/reconcile", s.handleReconcile)

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(config.Auth)(handler)
	handler = loggingMiddleware(logger, config.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// A reconcile request downloads and matches both collections.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
