// Package cli holds the start-up steps shared by cmd/spendlog and
// cmd/spendlog-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendlog/internal/amqp"
	"spendlog/internal/config"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/storage"
)

// SetupLogger installs the application logger described by cfg as the
// default logger.
func SetupLogger(cfg *config.Config) *log.Logger {
	return log.Setup(cfg.LogLevel, cfg.LogFormat)
}

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error; variables already set in the environment win.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadAndValidateConfig loads configuration and validates it.
// Exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		// The configured logger does not exist yet.
		log.WithComponent(log.ComponentApp).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the database, applies migrations and optionally seeds the
// default categories. Exits the process on failure.
func InitSQLite(ctx context.Context, logger *log.Logger, cfg *config.Config) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	if version, dirty, err := storage.SchemaVersion(storage.DSN(cfg.SQLiteDBPath)); err != nil {
		logger.Warn("Could not read schema version", log.FieldError, err)
	} else {
		logger.Info("Database ready", "path", cfg.SQLiteDBPath, "schema_version", version, "dirty", dirty)
	}

	if cfg.SeedCategories {
		n, err := repo.SeedCategories(ctx, core.DefaultCategories())
		if err != nil {
			logger.Error("Failed to seed categories", log.FieldError, err)
			repo.Close()
			os.Exit(1)
		}
		logger.Info("Seeded default categories", "inserted", n)
	}
	return repo
}

// InitAMQP connects to the broker when one is configured. It returns nil
// when AMQP is disabled or unreachable; the API keeps serving without
// change events.
func InitAMQP(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled, change events will not be published")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to connect to AMQP, change events will not be published", log.FieldError, err)
		return nil
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// The returned context is cancelled on SIGINT or SIGTERM after cleanup has
// run or timeout has elapsed, whichever comes first; done is closed after
// that.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		shutdown(logger, timeout, cleanup, cancel)
		close(done)
	}()

	return ctx, done
}

func shutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context), cancel context.CancelFunc) {
	defer cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	finished := make(chan struct{})
	go func() {
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		close(finished)
	}()

	select {
	case <-finished:
		logger.Info("Shutdown complete")
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	}
}

// WaitForShutdown blocks until the context is cancelled and shutdown has
// finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
