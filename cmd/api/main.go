// Package main is the entry point for the cycle prediction API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapponejosh/cycle-api/internal/api"
	"github.com/zapponejosh/cycle-api/internal/config"
	"github.com/zapponejosh/cycle-api/internal/cycle"
	"github.com/zapponejosh/cycle-api/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	policy, err := cycle.LoadPhasePolicy(cfg.PhasePolicyPath)
	if err != nil {
		return fmt.Errorf("load phase policy: %w", err)
	}

	log.Info("starting cycle API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
		slog.String("timezone", cfg.Location().String()),
		slog.Int("phases", len(policy.Boundaries())),
		slog.Bool("custom_policy", cfg.PhasePolicyPath != ""),
	)

	if cfg.IsDevelopment() && cfg.APIKey == "" {
		log.Warn("API_KEY is empty; prediction endpoints are unauthenticated")
	}

	handlers := api.NewHandlers(cfg, policy, cycle.SystemClock, log)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("cycle API ready", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server shutdown completed")
	return nil
}
