package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/ceijey/greenguardian-backend/api/routes"
	"github.com/ceijey/greenguardian-backend/internal/actions"
	"github.com/ceijey/greenguardian-backend/internal/auth"
	"github.com/ceijey/greenguardian-backend/internal/challenges"
	"github.com/ceijey/greenguardian-backend/internal/community"
	"github.com/ceijey/greenguardian-backend/internal/events"
	"github.com/ceijey/greenguardian-backend/internal/notifications"
	"github.com/ceijey/greenguardian-backend/internal/presence"
	"github.com/ceijey/greenguardian-backend/internal/profiles"
	"github.com/ceijey/greenguardian-backend/internal/scan"
	"github.com/ceijey/greenguardian-backend/internal/swaps"
	"github.com/ceijey/greenguardian-backend/internal/users"
	"github.com/ceijey/greenguardian-backend/pkg/auth/session"
	"github.com/ceijey/greenguardian-backend/pkg/classify"
	"github.com/ceijey/greenguardian-backend/pkg/config"
	"github.com/ceijey/greenguardian-backend/pkg/db"
	"github.com/ceijey/greenguardian-backend/pkg/geocode"
	"github.com/ceijey/greenguardian-backend/pkg/logger"
	"github.com/ceijey/greenguardian-backend/pkg/migrate"
	"github.com/ceijey/greenguardian-backend/pkg/outbox"
	"github.com/ceijey/greenguardian-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, redisClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
) (routes.Services, error) {
	gormDB := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	actionsService, err := actions.NewService(actions.ServiceParams{
		Repo: actions.NewRepository(gormDB),
	})
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Users:     users.NewRepository(gormDB),
		Sessions:  sessionManager,
		Limiter:   redisClient,
		JWT:       cfg.JWT,
		Password:  cfg.Password,
		RateLimit: cfg.AuthRateLimit,
	})
	if err != nil {
		return routes.Services{}, err
	}

	swapsService, err := swaps.NewService(swaps.ServiceParams{
		Repo:    swaps.NewRepository(gormDB),
		Actions: actionsService,
		Tx:      dbClient,
		Outbox:  outboxService,
	})
	if err != nil {
		return routes.Services{}, err
	}

	challengesRepo := challenges.NewRepository(gormDB)
	challengesService, err := challenges.NewService(challenges.ServiceParams{
		Repo:    challengesRepo,
		Actions: actionsService,
		Tx:      dbClient,
		Outbox:  outboxService,
	})
	if err != nil {
		return routes.Services{}, err
	}

	eventsService, err := events.NewService(events.ServiceParams{
		Repo:       events.NewRepository(gormDB),
		Challenges: challengesRepo,
		Actions:    actionsService,
		Tx:         dbClient,
		Outbox:     outboxService,
	})
	if err != nil {
		return routes.Services{}, err
	}

	presenceService, err := presence.NewService(redisClient)
	if err != nil {
		return routes.Services{}, err
	}

	profilesService, err := profiles.NewService(profiles.ServiceParams{
		Repo:    profiles.NewRepository(gormDB),
		Actions: actionsService,
	})
	if err != nil {
		return routes.Services{}, err
	}

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo: notifications.NewRepository(gormDB),
	})
	if err != nil {
		return routes.Services{}, err
	}

	communityParams := community.ServiceParams{
		Repo: community.NewRepository(gormDB),
	}
	if cfg.Geocode.BaseURL != "" {
		geocoder, err := geocode.NewClient(cfg.Geocode)
		if err != nil {
			return routes.Services{}, err
		}
		communityParams.Geocoder = geocoder
	} else {
		logg.Warn(context.Background(), "geocode base url not set, hotspot reverse geocoding disabled")
	}
	communityService, err := community.NewService(communityParams)
	if err != nil {
		return routes.Services{}, err
	}

	classifier, err := classify.NewClient(cfg.Classifier)
	if err != nil {
		return routes.Services{}, err
	}
	scanService, err := scan.NewService(scan.ServiceParams{
		Classifier: classifier,
		Limiter:    redisClient,
		Actions:    actionsService,
		Tx:         dbClient,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authService,
		Swaps:         swapsService,
		Challenges:    challengesService,
		Events:        eventsService,
		Presence:      presenceService,
		Profiles:      profilesService,
		Actions:       actionsService,
		Notifications: notificationsService,
		Community:     communityService,
		Scan:          scanService,
	}, nil
}
