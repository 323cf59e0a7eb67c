package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/amqp"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/config"
	apphttp "github.com/Ovcharovbohdan43/exgo-sub002/internal/http"
	applog "github.com/Ovcharovbohdan43/exgo-sub002/internal/log"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/services"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/storage"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/store/memory"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

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

	var stores apphttp.Stores
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, loc)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		stores = apphttp.Stores{Transactions: repo, Goals: repo, Recurring: repo}
		logger.Info("Initialized SQLite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	default:
		st := memory.New(loc)
		stores = apphttp.Stores{Transactions: st, Goals: st, Recurring: st}
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	}

	// Change notifications are optional; without a broker goals are still
	// reconciled in-process after every mutation.
	var notifier services.ChangeNotifier
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change notifications", "error", err)
		} else {
			defer client.Close()
			notifier = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, stores, notifier, apphttp.Options{
		MonthlyIncome:   cfg.MonthlyIncome,
		Currency:        cfg.Currency,
		Language:        cfg.Language,
		Location:        loc,
		UpcomingHorizon: cfg.UpcomingHorizon,
	}, logger)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting finbook server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
