package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// ServerConfig holds configuration for the metrics server
type ServerConfig struct {
	Port    int           `env:"METRICS_PORT"`
	Timeout time.Duration `env:"METRICS_TIMEOUT" envDefault:"30s"`
}

// WithDefaultPort fills in port when METRICS_PORT was not set. Each binary
// has its own default so they can share a host.
func (c ServerConfig) WithDefaultPort(port int) ServerConfig {
	if c.Port == 0 {
		c.Port = port
	}
	return c
}

// ReadinessCheck reports why the process cannot take work yet, or nil.
type ReadinessCheck func() error

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithReadiness makes /ready answer 503 while check returns an error.
func WithReadiness(check ReadinessCheck) ServerOption {
	return func(s *Server) {
		s.ready = check
	}
}

// Server exposes /metrics for scraping plus liveness and readiness checks.
type Server struct {
	server  *http.Server
	logger  *zap.Logger
	service string
	ready   ReadinessCheck
}

type statusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Reason  string `json:"reason,omitempty"`
}

// NewServer builds the server. service is reported by the health and ready endpoints.
func NewServer(config ServerConfig, registry *Registry, logger *zap.Logger, service string, opts ...ServerOption) *Server {
	s := &Server{
		logger:  logger.Named("metrics-server"),
		service: service,
		ready:   func() error { return nil },
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", registry.Handler())
	r.Get("/health", s.health)
	r.Get("/ready", s.readiness)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      r,
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
		IdleTimeout:  config.Timeout * 2,
	}

	return s
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, statusResponse{Status: "healthy", Service: s.service})
}

func (s *Server) readiness(w http.ResponseWriter, _ *http.Request) {
	if err := s.ready(); err != nil {
		s.respond(w, http.StatusServiceUnavailable, statusResponse{Status: "not ready", Service: s.service, Reason: err.Error()})
		return
	}
	s.respond(w, http.StatusOK, statusResponse{Status: "ready", Service: s.service})
}

func (s *Server) respond(w http.ResponseWriter, status int, body statusResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode status response", zap.Error(err))
	}
}

// Start binds the port, then serves until ctx is done. A bind failure is
// returned immediately.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("metrics server listen on %s: %w", s.server.Addr, err)
	}
	s.logger.Info("metrics server listening", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
		return s.Stop(context.WithoutCancel(ctx))
	}
}

// Stop drains in-flight scrapes, bounded by a fixed timeout.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("metrics server shutdown incomplete", zap.Error(err))
		return err
	}

	s.logger.Info("metrics server stopped")
	return nil
}

// Handler exposes the server's routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
