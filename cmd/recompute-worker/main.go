package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/amqp"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/config"
	applog "github.com/Ovcharovbohdan43/exgo-sub002/internal/log"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/services"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/storage"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting recompute-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Failed to resolve timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, loc)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	reconciler := services.NewGoalReconciler(repo, repo)

	var dial worker.Dialer
	if cfg.AMQPURL != "" {
		dial = func() (*amqp.Client, error) {
			return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		}
		logger.Info("Consuming change notifications", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, running on the periodic interval only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.NewRecomputeWorker(dial, reconciler, cfg.ReconcileInterval)
	logger.Info("Recompute worker configured",
		"interval", cfg.ReconcileInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
