// Package server wires the HTTP surface: routing, CORS, request logging and
// graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	ingesthandler "github.com/pulseiq/pulseiq/internal/domain/ingest/handler"
	"github.com/pulseiq/pulseiq/internal/domain/reporting"
	"github.com/pulseiq/pulseiq/pkg/config"
)

// Server is the HTTP front of the application.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the router and wraps it with the middleware stack.
func New(cfg *config.Config, ingest *ingesthandler.IngestHandler, reports *reporting.Handler, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/ingest", ingest.Ingest)
	mux.HandleFunc("DELETE /api/weeks/{iso}", ingest.Cleanup)
	mux.HandleFunc("GET /api/weeks", reports.Weeks)
	mux.HandleFunc("GET /api/summary", reports.Summary)
	mux.HandleFunc("GET /api/data-health", reports.Health)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Observability.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	handler := c.Handler(requestID(logRequests(logger, mux)))

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the wired middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
