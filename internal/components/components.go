package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"safetyshare/internal/alerting"
	"safetyshare/internal/api"
	"safetyshare/internal/config"
	"safetyshare/internal/consensus"
	"safetyshare/internal/observability"
	"safetyshare/internal/redis"
	"safetyshare/internal/service"
	"safetyshare/internal/storage/postgres"
	"safetyshare/internal/workers"
	"safetyshare/pkg/logger"
)

type Components struct {
	logger      *slog.Logger
	HttpServer  *api.Server
	Postgres    *postgres.Postgres
	Redis       *redis.Redis
	AlertQ      *redis.AlertQueue
	Broadcaster *workers.Broadcaster
	Sweeper     *workers.Sweeper
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")

	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	alertQueue := redis.NewAlertQueue(redisClient.Client, "alerts:broadcast")
	activityQueue := redis.NewActivityQueue(redisClient.Client, "activity:events")
	hazardCache := redis.NewHazardCache(redisClient)

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()

	notifier := service.NewActivityNotifier(activityQueue, clock, logger)
	dedup := alerting.NewDedupCache(cfg.Detection.AlertCooldown, clock)
	engine := consensus.NewEngine(storage.Hazards(), storage.Votes(), notifier, clock, logger)

	detectionSvc := service.NewDetectionService(
		storage.Hazards(), storage.Stats(), alertQueue,
		dedup, metrics, clock, logger, cfg.Detection,
	)
	hazardSvc := service.NewHazardService(
		storage.Hazards(), hazardCache, notifier,
		metrics, clock, logger, cfg.Detection,
	)
	validationSvc := service.NewValidationService(engine, storage.Votes(), hazardCache, metrics, logger)
	adminSvc := service.NewAdminHazardService(storage.Hazards(), hazardCache, logger)
	statsSvc := service.NewStatsService(storage.Stats())

	srv := service.NewService(detectionSvc, hazardSvc, validationSvc, adminSvc, statsSvc)

	httpServer := api.NewServer(cfg, logger, srv)
	logger.Info("Initialized server")

	comps := &Components{
		logger:     logger,
		HttpServer: httpServer,
		Postgres:   storage,
		Redis:      redisClient,
		AlertQ:     alertQueue,
		Sweeper:    workers.NewSweeper(storage.Hazards(), hazardCache, clock, logger, cfg.Broadcast.SweepEvery),
	}

	if !cfg.Broadcast.Disabled {
		comps.Broadcaster = workers.NewBroadcaster(logger, cfg.Broadcast, alertQueue)
	} else {
		logger.Info("Broadcast worker disabled")
	}

	return comps, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Shutting down components")

	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
