package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expenses/internal/amqp"
	"expenses/internal/cache"
	"expenses/internal/cli"
	"expenses/internal/config"
	"expenses/internal/log"
	"expenses/internal/sheets"
	gsheet "expenses/internal/sheets/google"
	"expenses/internal/sheets/memory"
	"expenses/internal/worker"
)

const (
	statsInterval = time.Minute
	sweepInterval = 10 * time.Minute
)

func main() {
	dryRun := flag.Bool("dry-run", false, "journal events in memory instead of Google Sheets")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentWorker, os.Stdout)

	logger.Info("Starting ledger-worker", "dry_run", *dryRun)

	validate := cfg.ValidateWorker
	if *dryRun {
		validate = cfg.ValidateConsumer
	}
	if err := validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldErrorType, log.ErrorTypeConfiguration,
			log.FieldError, err.Error())
		os.Exit(1)
	}

	journal, err := newJournal(context.Background(), cfg, *dryRun, logger)
	if err != nil {
		logger.Error("Failed to initialize journal", log.FieldError, err.Error())
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}

	journalWorker := worker.NewJournalWorker(journal, logger,
		worker.WithSeenWindow(cfg.SeenEventsSize, cfg.SeenEventsTTL))

	sweeper := cache.NewManager(logger.Logger)
	sweeper.Register(journalWorker.SeenEvents())
	sweeper.StartCleanup(sweepInterval)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func() {
		sweeper.Stop()
		amqpClient.Close()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.Consume(gctx, journalWorker.HandleEvent)
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				processed, skipped := journalWorker.Stats()
				logger.Info("Journal worker stats", "processed", processed, "skipped", skipped)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err.Error())
		sweeper.Stop()
		amqpClient.Close()
		os.Exit(1)
	}

	<-done
	logger.Info("ledger-worker stopped")
}

func newJournal(ctx context.Context, cfg *config.Config, dryRun bool, logger *log.Logger) (sheets.JournalWriter, error) {
	if dryRun {
		logger.Info("Dry run: journal rows are kept in memory")
		return memory.New(), nil
	}

	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	if err := client.EnsureHeader(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
