// Package http provides the REST gateway in front of the gRPC employee service.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	"github.com/mutugading/goapps-backend/services/hr/internal/delivery/auth"
	hrgrpc "github.com/mutugading/goapps-backend/services/hr/internal/delivery/grpc"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/config"
)

// Check reports whether a dependency is ready to serve traffic.
type Check func(ctx context.Context) error

// Server represents the HTTP server.
type Server struct {
	server   *http.Server
	client   *hrgrpc.EmployeeServiceClient
	verifier *auth.Verifier
	checks   map[string]Check
	config   *config.ServerConfig
	origins  []string
}

// NewServer creates the HTTP server. conn reaches the gRPC employee service;
// checks are evaluated by /readyz.
func NewServer(
	cfg *config.ServerConfig,
	corsCfg config.CORSConfig,
	conn grpc.ClientConnInterface,
	verifier *auth.Verifier,
	checks map[string]Check,
) *Server {
	return &Server{
		client:   hrgrpc.NewEmployeeServiceClient(conn),
		verifier: verifier,
		checks:   checks,
		config:   cfg,
		origins:  corsCfg.AllowedOrigins,
	}
}

// Handler builds the full HTTP handler: API routes, health, metrics and middleware.
func (s *Server) Handler() (http.Handler, error) {
	gwMux := runtime.NewServeMux()
	if err := s.registerRoutes(gwMux); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	mux := http.NewServeMux()

	// API routes
	mux.Handle("/api/", s.authMiddleware(gwMux))

	// Health check endpoints
	mux.HandleFunc("/healthz", s.healthHandler)
	mux.HandleFunc("/readyz", s.readyHandler)
	mux.HandleFunc("/livez", s.liveHandler)

	// Metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(mux)

	return requestIDMiddleware(tracingMiddleware(loggingMiddleware(corsHandler))), nil
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:      handler,
		ReadTimeout:  durationOr(s.config.ReadTimeout, 15*time.Second),
		WriteTimeout: durationOr(s.config.WriteTimeout, 15*time.Second),
		IdleTimeout:  60 * time.Second,
	}

	log.Info().
		Int("port", s.config.HTTPPort).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// Health handlers
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeRawJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		log.Warn().Interface("failures", failures).Msg("Readiness check failed")
		writeRawJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "failures": failures})
		return
	}
	writeRawJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) liveHandler(w http.ResponseWriter, _ *http.Request) {
	writeRawJSON(w, http.StatusOK, map[string]any{"status": "live"})
}
