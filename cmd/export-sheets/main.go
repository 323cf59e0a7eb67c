package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/config"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/export"
	applog "github.com/Ovcharovbohdan43/exgo-sub002/internal/log"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/services"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/storage"
)

// export-sheets pushes one month's summary row to the configured
// Google Spreadsheet and exits.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentSheets})
	applog.SetDefault(logger)

	monthFlag := flag.String("month", "", "month to export as YYYY-MM (default: current month)")
	flag.Parse()

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

	monthKey := *monthFlag
	if monthKey == "" {
		monthKey = core.MonthKey(time.Now(), loc)
	}
	if _, _, err := core.ParseMonthKey(monthKey); err != nil {
		logger.Error("Invalid month key", "month", monthKey, "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, loc)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	txs, err := repo.GetTransactionsForMonth(ctx, monthKey)
	if err != nil {
		logger.Error("Failed to load transactions", "month", monthKey, "error", err)
		os.Exit(1)
	}

	agg := services.ComputeTotals(txs, cfg.MonthlyIncome)
	shares := services.CategoryBreakdown(txs)

	exporter, err := export.NewSheetsExporter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, export.Credentials{
		JSON: []byte(cfg.GoogleCredentialsJSON),
		File: cfg.GoogleCredentialsFile,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Sheets exporter", "error", err)
		os.Exit(1)
	}

	ref, err := exporter.ExportMonthlySummary(ctx, monthKey, agg, shares)
	if err != nil {
		logger.Error("Export failed", "month", monthKey, "error", err)
		os.Exit(1)
	}

	logger.Info("Export finished", "month", monthKey, "transactions", len(txs), "ref", ref)
}
