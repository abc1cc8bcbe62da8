// Package web provides the HTTP surface of serve mode: triggering runs and
// reading the latest data-quality report.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/fleximart/internal/config"
	"github.com/JonMunkholm/fleximart/internal/metrics"
	"github.com/JonMunkholm/fleximart/internal/pipeline"
	mw "github.com/JonMunkholm/fleximart/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for serve mode.
type Server struct {
	service    *pipeline.Service
	telemetry  *metrics.Registry
	reportPath string
	cfg        config.ServerConfig
	router     *chi.Mux
	server     *http.Server
}

// NewServer creates a Server. telemetry may be nil, in which case /metrics
// is not mounted.
func NewServer(service *pipeline.Service, telemetry *metrics.Registry, reportPath string, cfg config.ServerConfig) *Server {
	s := &Server{
		service:    service,
		telemetry:  telemetry,
		reportPath: reportPath,
		cfg:        cfg,
		router:     chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	// No write timeout: a triggered run holds its request until the report is written
	s.server = &http.Server{
		Addr:        cfg.Addr(),
		Handler:     s.router,
		ReadTimeout: cfg.ReadTimeout,
		IdleTimeout: cfg.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/report", s.handleReport)
	s.router.Get("/healthz", s.handleHealth)
	if s.telemetry != nil {
		s.router.Handle("/metrics", s.telemetry.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.With(mw.APIKeyAuth(s.cfg.APIKeys)).Post("/runs", s.handleTriggerRun)
		r.Get("/runs/latest", s.handleLatestRun)
		r.Get("/runs/status", s.handleRunStatus)
	})
}

// Start begins listening for HTTP requests. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, then waits for an active run to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.service.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
