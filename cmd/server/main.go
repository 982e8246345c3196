/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the loan engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse flags (defaults from environment, optionally from a .env file)
  2. Validate configuration
  3. Build the zap logger
  4. Create the in-memory loan store and API handler
  5. Optionally load a demo scenario
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080, env LOAN_ENGINE_PORT)
  -log-level  debug, info, warn, error (default: info, env LOAN_ENGINE_LOG_LEVEL)
  -scenario   Demo scenario to preload (env LOAN_ENGINE_SCENARIO)
  -env-file   .env file to load before reading the environment

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Exit

EXAMPLES:
  ./server -scenario=dashboard
  ./server -port=3000 -log-level=debug
  ./server -env-file=.env

SEE ALSO:
  - config.go: Flag and environment handling
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/loan-engine/api"
	"github.com/warp/loan-engine/loans"
	"github.com/warp/loan-engine/logging"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *Config, logger *zap.Logger) error {
	handler := api.NewHandler(loans.NewMemory(), logger)

	if cfg.Scenario != "" {
		if err := handler.Load(context.Background(), cfg.Scenario); err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Port),
			zap.String("api", fmt.Sprintf("http://localhost:%d/api", cfg.Port)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
