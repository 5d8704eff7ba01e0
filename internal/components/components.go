package components

import (
	"context"
	"fmt"
	"os"
	"time"

	"log/slog"

	"github.com/divyanshu-1/RoadX/internal/api"
	"github.com/divyanshu-1/RoadX/internal/config"
	"github.com/divyanshu-1/RoadX/internal/notify"
	"github.com/divyanshu-1/RoadX/internal/redis"
	"github.com/divyanshu-1/RoadX/internal/service"
	"github.com/divyanshu-1/RoadX/internal/storage/postgres"
)

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	Postgres   *postgres.Postgres
	Redis      *redis.Redis
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")
	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres", slog.Any("error", err))
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		storage.Pool.Close()
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}
	responderCache := redis.NewResponderCache(redisClient, cfg.Search.CacheTTL)

	pushClient := notify.NewFCMClient(cfg.Push, logger)
	smsClient := notify.NewTwilioClient(cfg.SMS, logger)

	var sms notify.SMSSender
	if smsClient != nil {
		sms = smsClient
	}
	fanout := notify.NewFanout(pushClient, sms, cfg.Search.FanoutPoolSize, logger)

	proximitySvc := service.NewProximityService(storage.Responders(), responderCache, cfg.Search, logger)
	incidentSvc := service.NewIncidentService(
		storage.Incidents(),
		storage.Users(),
		proximitySvc,
		fanout,
		pushClient,
		cfg.Search,
		logger,
	)

	srv := service.NewService(incidentSvc, proximitySvc)

	httpServer := api.NewServer(cfg, logger, srv, storage.Users())
	logger.Info("Initialized server")

	return &Components{
		logger:     logger,
		HttpServer: httpServer,
		Postgres:   storage,
		Redis:      redisClient,
	}, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
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
