package main

import (
	"context"
	"errors"
	"os"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/cli"
	"spendlog/internal/log"
	"spendlog/internal/sheets/google"
	"spendlog/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentWorker)

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	sheetsClient, err := google.New(startCtx, google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		cancelStart()
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	if err := sheetsClient.EnsureHeader(startCtx); err != nil {
		logger.Warn("Could not verify change log header", log.FieldError, err)
	}
	cancelStart()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}

	changeLog := worker.NewChangeLogWorker(sheetsClient)

	// Consume returns once the context is cancelled; the client is closed after.
	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, nil)

	logger.Info("Starting change log worker",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"sheet", cfg.GoogleSheetName)

	if err := amqpClient.Consume(ctx, changeLog.HandleChange); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", log.FieldError, err)
		os.Exit(1)
	}

	if err := amqpClient.Close(); err != nil {
		logger.Warn("Error closing AMQP client", log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
	stats := changeLog.Stats()
	logger.Info("Worker stopped gracefully", "processed", stats.Processed, "failed", stats.Failed)
}
