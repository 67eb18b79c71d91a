package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bolsillo/internal/amqp"
	"bolsillo/internal/config"
	"bolsillo/internal/export"
	gsheet "bolsillo/internal/export/google"
	mem "bolsillo/internal/export/memory"
	applog "bolsillo/internal/log"
	"bolsillo/internal/storage"
	"bolsillo/internal/worker"
)

func main() {
	// Load .env for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting bolsillo-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Statement sink: Google Sheets when configured, otherwise an in-memory
	// sink so the pipeline still drains export_state locally.
	var writer export.StatementWriter
	if cfg.ExportEnabled() {
		client, err := gsheet.New(context.Background(), cfg.ExportSpreadsheetID, cfg.ExportSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets export initialized",
			"spreadsheet_id", cfg.ExportSpreadsheetID,
			"sheet", cfg.ExportSheetName)
	} else {
		writer = mem.New()
		logger.Info("Export disabled, using in-memory sink - no EXPORT_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(repo, writer, cfg.ExportBatchSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Drain anything that accumulated while the worker was down.
	if err := exportWorker.StartupSweep(ctx); err != nil {
		logger.Error("Startup sweep failed", "error", err)
		// Keep going; the periodic sweep retries.
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeRecordChanges(gctx, func(msg *amqp.RecordChangeMessage) error {
			return exportWorker.HandleChangeMessage(gctx, msg)
		})
	})

	// Periodic sweep picks up records whose change message was lost.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := exportWorker.StartupSweep(gctx); err != nil {
					logger.Error("Periodic sweep failed", "error", err)
				}
			}
		}
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-gctx.Done():
		logger.Info("Worker context cancelled")
	}

	cancel()
	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
