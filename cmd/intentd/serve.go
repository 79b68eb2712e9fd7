package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/intentd/internal/http"
)

// serveCmd trains the classifier and runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Train the classifier and serve the HTTP classification API",
	Long: `Train the classifier on the configured training dataset and serve the
HTTP API until interrupted.

Endpoints:
  POST /api/v1/classify  classify a query
  GET  /health           liveness and training status
  GET  /metrics          Prometheus metrics

Examples:
  # Serve with defaults (127.0.0.1:8700)
  intentd serve

  # Serve with a config file
  intentd serve --config intentd.yaml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.train(cmd.Context()); err != nil {
		return err
	}

	server, err := http.NewServer(a.engine, a.logger, &http.Config{
		Host: a.cfg.Server.Host,
		Port: a.cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.logger.Info("intentd server started",
		zap.String("host", a.cfg.Server.Host),
		zap.Int("port", a.cfg.Server.Port),
		zap.String("version", version))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		a.logger.Info("received signal, shutting down gracefully",
			zap.String("signal", sig.String()),
			zap.Duration("shutdown_timeout", a.cfg.Server.ShutdownTimeout))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}
