package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/solstice-analytics/solstice/internal/app"
	"github.com/solstice-analytics/solstice/internal/catalog"
	"github.com/solstice-analytics/solstice/internal/categorize"
	"github.com/solstice-analytics/solstice/internal/facts"
	"github.com/solstice-analytics/solstice/internal/mapping"
	"github.com/solstice-analytics/solstice/internal/observability"
	"github.com/solstice-analytics/solstice/internal/orders"
	"github.com/solstice-analytics/solstice/internal/shared"
	"github.com/solstice-analytics/solstice/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()

	catalogRepo := catalog.NewRepository(pool)
	mappingRepo := mapping.NewRepository(pool)
	ordersRepo := orders.NewRepository(pool)
	factsRepo := facts.NewRepository(pool)

	factsCache := facts.NewCache(redisClient, cfg.FactsCacheTTL)
	rebuildLock := shared.NewRebuildLock(redisClient, cfg.RebuildLockTTL)
	factsService := facts.NewService(
		catalogRepo, mappingRepo, ordersRepo, factsRepo,
		factsCache, rebuildLock, metrics, logger,
		facts.ServiceConfig{InvoiceStatuses: cfg.AcceptedInvoiceStatuses()},
	)
	rebuildJob := jobs.NewFactsRebuildJob(factsService, logger)

	categorizeService := categorize.NewService(catalogRepo, cfg.LegacySKUPrefixes(), nil, logger)
	repairJob := jobs.NewCategorizeRepairJob(categorizeService, logger)

	rebuildTask, err := jobs.NewFactsRebuildTask("cron")
	if err != nil {
		logger.Error("build rebuild task", slog.Any("error", err))
		os.Exit(1)
	}
	repairTask, err := jobs.NewCategorizeRepairTask("cron")
	if err != nil {
		logger.Error("build repair task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskFactsRebuild, Handler: rebuildJob.Handle},
			{Type: jobs.TaskCategorizeRepair, Handler: repairJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RebuildCron, Task: rebuildTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.CategorizeCron, Task: repairTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
