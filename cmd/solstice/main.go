package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/solstice-analytics/solstice/internal/app"
	"github.com/solstice-analytics/solstice/internal/catalog"
	"github.com/solstice-analytics/solstice/internal/facts"
	factshttp "github.com/solstice-analytics/solstice/internal/facts/http"
	"github.com/solstice-analytics/solstice/internal/mapping"
	"github.com/solstice-analytics/solstice/internal/observability"
	"github.com/solstice-analytics/solstice/internal/orders"
	"github.com/solstice-analytics/solstice/internal/shared"
	"github.com/solstice-analytics/solstice/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	catalogRepo := catalog.NewRepository(dbpool)
	mappingRepo := mapping.NewRepository(dbpool)
	ordersRepo := orders.NewRepository(dbpool)
	factsRepo := facts.NewRepository(dbpool)

	factsCache := facts.NewCache(redisClient, cfg.FactsCacheTTL)
	rebuildLock := shared.NewRebuildLock(redisClient, cfg.RebuildLockTTL)
	factsService := facts.NewService(
		catalogRepo, mappingRepo, ordersRepo, factsRepo,
		factsCache, rebuildLock, metrics, logger,
		facts.ServiceConfig{InvoiceStatuses: cfg.AcceptedInvoiceStatuses()},
	)
	factsHandler := factshttp.NewHandler(logger, factsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		FactsHandler: factsHandler,
		JobHandler:   jobHandler,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppRequestTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", slog.Any("error", err))
		}
	}()

	logger.Info("solstice listening", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve http", slog.Any("error", err))
		os.Exit(1)
	}
}
