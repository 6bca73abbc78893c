package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendlog/internal/cache"
	"spendlog/internal/cli"
	apphttp "spendlog/internal/http"
	"spendlog/internal/log"
	"spendlog/internal/metrics"
	"spendlog/internal/services"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = time.Minute
	monthlyStatsCacheCap = 32
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentApp)

	repo := cli.InitSQLite(context.Background(), logger, cfg)

	m := metrics.New()

	var publisher services.Publisher
	amqpClient := cli.InitAMQP(logger, cfg)
	if amqpClient != nil {
		publisher = amqpClient
	}
	events := services.NewEventPublisher(publisher, m)

	statsCache := cache.NewLRUCache[int, services.MonthlyStats](monthlyStatsCacheCap, cfg.StatsCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register("monthly_stats", statsCache)
	cacheManager.StartCleanup(cacheCleanupInterval)

	categories := services.NewCategoryService(repo, events)
	expenses := services.NewExpenseService(repo, events)
	dashboard := services.NewDashboardService(repo, statsCache, m)
	expenses.OnChange(dashboard.InvalidateMonthlyStats)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		Debug:              cfg.Debug,
		Version:            cfg.Version,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, apphttp.Deps{
		Categories: categories,
		Expenses:   expenses,
		Dashboard:  dashboard,
		Store:      repo,
		Metrics:    m,
		Caches:     cacheManager,
	})

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("Error closing AMQP client", log.FieldError, err)
			}
		}
		if err := repo.Close(); err != nil {
			logger.Warn("Error closing database", log.FieldError, err)
		}
	})

	logger.Info("Starting spendlog server",
		"port", cfg.Port,
		"version", cfg.Version,
		"debug", cfg.Debug,
		"amqp_enabled", amqpClient != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
