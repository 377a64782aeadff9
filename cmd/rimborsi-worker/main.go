// The worker drains the record-saved queue and appends each record as
// a row in a Google Sheet, independently of the serving process.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rimborsi/internal/amqp"
	"rimborsi/internal/config"
	gsheet "rimborsi/internal/sheets/google"
	"rimborsi/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting rimborsi-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sheetsClient, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(sheetsClient)

	logger.Info("Consuming record-saved messages", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeRecordSaved(ctx, syncWorker.HandleRecordSaved); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
