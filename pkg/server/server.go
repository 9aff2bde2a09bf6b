// Package server exposes the gate pipeline over HTTP: the assist endpoint,
// introspection endpoints for limits, budgets, and the cache, admin
// operations, health, and Prometheus metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hearth-hq/beacon/pkg/config"
	"hearth-hq/beacon/pkg/gate"
	"hearth-hq/beacon/pkg/server/middleware"
)

// Options wires the server's collaborators.
type Options struct {
	Config   config.ServerConfig
	Pipeline *gate.Pipeline
	Logger   *slog.Logger

	// MetricsEnabled exposes /metrics when true.
	MetricsEnabled bool

	// AllowedOrigins configures CORS. Empty allows any origin.
	AllowedOrigins []string
}

// Server is the HTTP front of the beacon service.
type Server struct {
	httpServer *http.Server
	pipeline   *gate.Pipeline
	logger     *slog.Logger
	config     config.ServerConfig
	started    time.Time
}

// New creates the server with all routes registered.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		pipeline: opts.Pipeline,
		logger:   logger,
		config:   opts.Config,
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/assist", s.handleAssist)
	mux.HandleFunc("GET /v1/cache/stats", s.handleCacheStats)
	mux.HandleFunc("GET /v1/limits/{caller}", s.handleLimitStatus)
	mux.HandleFunc("GET /v1/budget/{caller}", s.handleBudgetUsage)
	mux.HandleFunc("GET /v1/budget/{caller}/history", s.handleBudgetHistory)
	mux.HandleFunc("POST /admin/cache/clear", s.handleCacheClear)
	mux.HandleFunc("POST /admin/limits/{caller}/reset", s.handleLimitsReset)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if opts.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.CORS(opts.AllowedOrigins)(handler)
	handler = middleware.RequestID(handler)

	s.httpServer = &http.Server{
		Addr:         opts.Config.ListenAddress,
		Handler:      handler,
		ReadTimeout:  opts.Config.ReadTimeout,
		WriteTimeout: opts.Config.WriteTimeout,
		IdleTimeout:  opts.Config.IdleTimeout,
	}
	return s
}

// Handler returns the fully assembled HTTP handler, for tests and custom
// listeners.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "address", s.config.ListenAddress)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
