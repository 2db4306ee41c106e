package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/viteproxy/pkg/config"
	"mercator-hq/viteproxy/pkg/proxy"
	"mercator-hq/viteproxy/pkg/proxy/middleware"
	"mercator-hq/viteproxy/pkg/proxy/types"
	"mercator-hq/viteproxy/pkg/telemetry/health"
)

// Dependencies are the handlers the server routes to. Nil fields disable the
// corresponding routes.
type Dependencies struct {
	// DevServer forwards to the dev server and is mounted at
	// dev_server.mount_path.
	DevServer http.Handler

	// Checker backs the liveness and readiness endpoints.
	Checker *health.Checker

	// Metrics serves the Prometheus endpoint.
	Metrics http.Handler

	// Version is reported by the version endpoint.
	Version health.VersionInfo

	// Logger is used for server and access logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Server is the HTTP host server.
type Server struct {
	config       *config.Config
	deps         Dependencies
	logger       *slog.Logger
	httpServer   *http.Server
	listener     net.Listener
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new host server.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:       cfg,
		deps:         deps,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
}

// Start listens on the configured address and blocks until ctx is
// cancelled, Stop is called, or the server fails. Cancellation and Stop shut
// the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.config.Server.ReadTimeout,
		ReadHeaderTimeout: s.config.Server.ReadHeaderTimeout,
		WriteTimeout:      s.config.Server.WriteTimeout,
		IdleTimeout:       s.config.Server.IdleTimeout,
		MaxHeaderBytes:    s.config.Server.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"address", ln.Addr().String(),
			"dev_server_mount", s.mountPath(),
		)

		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// Addr returns the address the server is listening on, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()

	// Innermost first: CORS, request ID, logging, recovery.
	handler = middleware.CORSMiddleware(s.convertCORSConfig())(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(s.logger)(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// routes registers built-in endpoints and the dev server mount.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	telemetry := s.config.Telemetry

	if telemetry.Health.Enabled && s.deps.Checker != nil {
		health.Register(mux, health.Paths{
			Liveness:  telemetry.Health.LivenessPath,
			Readiness: telemetry.Health.ReadinessPath,
			Version:   telemetry.Health.VersionPath,
		}, s.deps.Checker, s.deps.Version)
	}

	if telemetry.Metrics.Enabled && s.deps.Metrics != nil {
		mux.Handle(telemetry.Metrics.Path, s.deps.Metrics)
	}

	mux.HandleFunc("GET /api/ping", handlePing)

	mount := s.mountPath()
	if mount != "" {
		proxy.Mount(mux, mount, s.deps.DevServer, s.config.DevServer.StripPrefix)
	}

	// Without a catch-all mount, unknown paths get a JSON 404.
	if mount == "" || proxy.NormalizePrefix(mount) != "" {
		mux.HandleFunc("/", handleNotFound)
	}

	return mux
}

// mountPath returns the dev server mount path, or "" when it is not mounted.
func (s *Server) mountPath() string {
	if !s.config.DevServer.Enabled || s.deps.DevServer == nil {
		return ""
	}
	return s.config.DevServer.MountPath
}

func handlePing(w http.ResponseWriter, _ *http.Request) {
	_ = proxy.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "pong"})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	_ = proxy.WriteErrorResponse(w, types.NewNotFoundError(fmt.Sprintf("No route for %s %s", r.Method, r.URL.Path)))
}

// convertCORSConfig converts config.CORSConfig to middleware.CORSConfig.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	cors := s.config.Server.CORS
	return &middleware.CORSConfig{
		Enabled:          cors.Enabled,
		AllowedOrigins:   cors.AllowedOrigins,
		AllowedMethods:   cors.AllowedMethods,
		AllowedHeaders:   cors.AllowedHeaders,
		ExposedHeaders:   cors.ExposedHeaders,
		MaxAge:           cors.MaxAge,
		AllowCredentials: cors.AllowCredentials,
	}
}
