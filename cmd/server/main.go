// Package main is the entry point for the pgcledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pgcledger/internal/infrastructure/bootstrap"
	"pgcledger/internal/infrastructure/config"
	v1 "pgcledger/internal/infrastructure/http/v1"
	"pgcledger/internal/infrastructure/storage/postgres"
	"pgcledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	log.Info("starting pgcledger server")

	ledger, err := bootstrap.Open(ctx, cfg, log, bootstrap.Options{
		Migrate: cfg.Database.MigrateOnStart,
		Listen:  true,
	})
	if err != nil {
		log.Fatalw("failed to open ledger", "error", err)
	}
	defer ledger.Close()

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Services:     ledger.Services,
		Tenants:      ledger.Tenants,
		Pool:         ledger.Pool.Pool,
		Logger:       log,
		History:      ledger.History,
		HealthChecks: ledger.HealthChecks,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- Graceful shutdown ---
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Errorw("server failed", "error", err)
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	postgres.LogPoolStats(logger.WithLogger(shutdownCtx, log), ledger.Pool.Pool)
	log.Info("server stopped")
}
