package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"rimborsi/internal/amqp"
	"rimborsi/internal/config"
	"rimborsi/internal/gemini"
	apphttp "rimborsi/internal/http"
	"rimborsi/internal/services"
	"rimborsi/internal/storage"
	"rimborsi/internal/syncer"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Snapshot store: sqlite by default, memory for throwaway runs.
	var store storage.RecordStore
	switch cfg.DataBackend {
	case "sqlite":
		sqliteStore, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		store = storage.NewMemoryStore()
		logger.Info("Initialized memory backend")
	}

	// Per-record sheet sync queue (optional).
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	recordService := services.NewRecordService(ctx, store, publisher)

	// Extraction and analysis (optional: the UI degrades to manual entry).
	var assistant apphttp.Assistant
	if os.Getenv("GEMINI_API_KEY") != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		assistant = client
		logger.Info("Gemini client initialized", "model", cfg.GeminiModel)
	} else {
		logger.Warn("Gemini disabled - no GEMINI_API_KEY provided; extraction and analysis are off")
	}

	webhook := syncer.NewWebhook(cfg.SyncWebhookURL, &http.Client{Timeout: 30 * time.Second})
	if !webhook.Configured() {
		logger.Info("Webhook sync disabled - no SYNC_WEBHOOK_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, recordService, assistant, webhook, cfg.MaxUploadBytes)
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting rimborsi server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
