package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"crpt-hq/ismp/pkg/config"
	"crpt-hq/ismp/pkg/telemetry/health"
	"crpt-hq/ismp/pkg/telemetry/tracing"
)

// Config contains configuration for the telemetry server.
type Config struct {
	// Address is the listen address, e.g. "127.0.0.1:9090"
	Address string

	// MetricsPath is where the metrics handler is mounted
	MetricsPath string

	// ReadTimeout bounds reading a request (default: 5s)
	ReadTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (default: 5s)
	ShutdownTimeout time.Duration

	// Version, Commit and BuildTime are reported by /version
	Version   string
	Commit    string
	BuildTime string
}

// ConfigFrom converts the metrics section of the configuration file.
func ConfigFrom(cfg *config.MetricsConfig) Config {
	return Config{
		Address:     cfg.ListenAddress,
		MetricsPath: cfg.Path,
	}
}

// Server serves metrics and health endpoints.
type Server struct {
	config  Config
	handler http.Handler
	logger  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	http     *http.Server
}

// New creates a telemetry server. metrics may be nil when metrics are
// disabled; checker may be nil when no health checks are registered.
func New(cfg Config, metrics http.Handler, checker *health.Checker, logger *slog.Logger) *Server {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = config.DefaultMetricsPath
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if checker == nil {
		checker = health.New(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "telemetry.server")

	s := &Server{config: cfg, logger: logger}
	s.handler = s.routes(metrics, checker)
	return s
}

// routes builds the mux and middleware chain.
func (s *Server) routes(metrics http.Handler, checker *health.Checker) http.Handler {
	mux := http.NewServeMux()
	if metrics != nil {
		mux.Handle(s.config.MetricsPath, metrics)
	}
	checker.Register(mux, s.config.Version, s.config.Commit, s.config.BuildTime)

	var handler http.Handler = mux
	handler = tracing.HTTPMiddleware(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Listen binds the listen address. Run calls it when it has not been
// called yet.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.http != nil {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.http = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadTimeout,
		ReadTimeout:       s.config.ReadTimeout,
	}
	srv, ln := s.http, s.listener
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("telemetry server started", "address", ln.Addr().String(), "metrics_path", s.config.MetricsPath)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("telemetry server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("telemetry server shutdown error: %w", err)
	}
	s.logger.Info("telemetry server stopped")
	return nil
}
