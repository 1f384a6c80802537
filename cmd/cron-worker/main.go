package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ceijey/greenguardian-backend/internal/cron"
	"github.com/ceijey/greenguardian-backend/internal/notifications"
	"github.com/ceijey/greenguardian-backend/internal/presence"
	"github.com/ceijey/greenguardian-backend/pkg/config"
	"github.com/ceijey/greenguardian-backend/pkg/db"
	"github.com/ceijey/greenguardian-backend/pkg/instance"
	"github.com/ceijey/greenguardian-backend/pkg/logger"
	"github.com/ceijey/greenguardian-backend/pkg/metrics"
	"github.com/ceijey/greenguardian-backend/pkg/migrate"
	"github.com/ceijey/greenguardian-backend/pkg/outbox"
	"github.com/ceijey/greenguardian-backend/pkg/redis"
)

const lockKeyFormat = "gg:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo: notifications.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build notifications service", err)
		os.Exit(1)
	}
	presenceService, err := presence.NewService(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build presence service", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	jobs := []func() (cron.Job, error){
		func() (cron.Job, error) {
			return cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
				Logger:        logg,
				Notifications: notificationsService,
			})
		},
		func() (cron.Job, error) {
			return cron.NewAnnouncementExpiryJob(cron.AnnouncementExpiryJobParams{
				Logger:        logg,
				Notifications: notificationsService,
			})
		},
		func() (cron.Job, error) {
			return cron.NewPresencePruneJob(cron.PresencePruneJobParams{
				Logger:   logg,
				Presence: presenceService,
			})
		},
		func() (cron.Job, error) {
			return cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
				Logger:     logg,
				DB:         dbClient,
				Repository: outbox.NewRepository(dbClient.DB()),
				Retention:  cfg.Cron.OutboxRetentionDays,
			})
		},
	}
	for _, build := range jobs {
		job, err := build()
		if err != nil {
			logg.Error(context.Background(), "failed to build cron job", err)
			os.Exit(1)
		}
		registry.Register(job)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "cron-worker",
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
