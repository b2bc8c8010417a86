package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lettercraft/internal/ai"
	"lettercraft/internal/config"
	"lettercraft/internal/jobsource"
	"lettercraft/internal/observability"
	"lettercraft/internal/usage"
)

const shutdownTimeout = 30 * time.Second

// Start wires the letter services and serves until ctx is done or a
// termination signal arrives.
func (s *Server) Start(ctx context.Context) error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	cleanup, err := s.initializeServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	httpServer := s.setupHTTPServer(om)

	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(ctx, httpServer)
}

// initializeObservability sets up tracing and metrics
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	om, err := observability.NewObservabilityManager(
		observability.GetObservabilityConfig(s.AppConfig, s.Version), s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	s.om = om
	s.Metrics = om.Metrics()
	return om, nil
}

// shutdownObservability flushes exporters
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// initializeServices builds the usage tracker, prompt store, orchestrator and
// job fetcher unless they were injected. The returned func releases them.
func (s *Server) initializeServices(ctx context.Context) (func(), error) {
	closers := []func(){}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if s.Jobs == nil {
		s.Jobs = jobsource.NewResolver(s.AppConfig.JobSource, s.Logger, jobsource.PublicOnly())
	}
	if s.Letters != nil {
		return cleanup, nil
	}

	tracker, closeTracker, err := usage.NewTracker(ctx, s.AppConfig.Usage.DatabaseURL, s.AppConfig.Usage.EnsureSchema, s.Logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, closeTracker)

	prompts, err := config.NewPromptStore(s.AppConfig.AI.CustomPrompts)
	if err != nil {
		cleanup()
		return nil, err
	}
	watcher, err := config.WatchPrompts(prompts, s.Logger)
	if err != nil {
		s.Logger.LogError(err, "Prompt hot reload disabled")
	} else if watcher != nil {
		s.promptWatcher = watcher
		closers = append(closers, func() {
			if err := watcher.Stop(); err != nil {
				s.Logger.LogError(err, "Failed to stop prompt watcher")
			}
		})
	}

	orchestrator, err := ai.NewOrchestratorFromConfig(ctx, s.AppConfig.AI, prompts, tracker, s.Metrics, s.Logger)
	if err != nil {
		cleanup()
		return nil, err
	}
	s.Letters = orchestrator
	return cleanup, nil
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	handler := om.HTTPMiddleware()(s.Handler())

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      handler,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startWithGracefulShutdown serves and shuts down on signal or ctx cancellation
func (s *Server) startWithGracefulShutdown(ctx context.Context, server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// Certificates come from TLSConfig.GetCertificate
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.releaseResources()
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown", "signal", sig.String())
	case <-ctx.Done():
		s.Logger.Info("Context cancelled, starting graceful shutdown")
	}

	return s.performGracefulShutdown(server)
}

// performGracefulShutdown drains in-flight requests then releases resources
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.releaseResources()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// releaseResources stops the certificate manager and rate limiter
func (s *Server) releaseResources() {
	if s.CertificateManager != nil {
		if err := s.CertificateManager.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop certificate manager")
		}
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
