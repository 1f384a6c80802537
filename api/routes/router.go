package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ceijey/greenguardian-backend/api/controllers"
	"github.com/ceijey/greenguardian-backend/api/middleware"
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
	"github.com/ceijey/greenguardian-backend/pkg/auth/session"
	"github.com/ceijey/greenguardian-backend/pkg/config"
	"github.com/ceijey/greenguardian-backend/pkg/db"
	"github.com/ceijey/greenguardian-backend/pkg/logger"
	"github.com/ceijey/greenguardian-backend/pkg/redis"
)

// Services bundles the domain services the HTTP surface dispatches to.
type Services struct {
	Auth          auth.Service
	Swaps         swaps.Service
	Challenges    challenges.Service
	Events        events.Service
	Presence      presence.Service
	Profiles      profiles.Service
	Actions       actions.Service
	Notifications notifications.Service
	Community     community.Service
	Scan          scan.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var cachePinger db.Pinger
	if redisClient != nil {
		cachePinger = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, cachePinger))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/swap", func(r chi.Router) {
			r.Get("/items", controllers.SwapItemList(svcs.Swaps, logg))
			r.Post("/items", controllers.SwapItemCreate(svcs.Swaps, logg))
			r.Get("/items/{itemId}", controllers.SwapItemDetail(svcs.Swaps, logg))
			r.Post("/items/{itemId}/request", controllers.SwapRequestCreate(svcs.Swaps, logg))
			r.Delete("/items/{itemId}/request", controllers.SwapRequestCancel(svcs.Swaps, logg))
			r.Get("/items/{itemId}/requests", controllers.SwapRequestList(svcs.Swaps, logg))
			r.Post("/items/{itemId}/requests/{userId}/accept", controllers.SwapRequestAccept(svcs.Swaps, logg))
			r.Post("/items/{itemId}/requests/{userId}/decline", controllers.SwapRequestDecline(svcs.Swaps, logg))
			r.Post("/items/{itemId}/requests/{userId}/complete", controllers.SwapComplete(svcs.Swaps, logg))
			r.Get("/requests/mine", controllers.SwapMyRequests(svcs.Swaps, logg))
			r.Get("/completed", controllers.SwapCompletedList(svcs.Swaps, logg))
		})

		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", controllers.ChallengeList(svcs.Challenges, logg))
			r.With(middleware.RequireOrganizer(logg)).Post("/", controllers.ChallengeCreate(svcs.Challenges, logg))
			r.Get("/joined", controllers.ChallengeJoined(svcs.Challenges, logg))
			r.Get("/{challengeId}", controllers.ChallengeDetail(svcs.Challenges, logg))
			r.Post("/{challengeId}/join", controllers.ChallengeJoin(svcs.Challenges, logg))
			r.Get("/{challengeId}/progress", controllers.ChallengeProgress(svcs.Challenges, logg))
			r.Get("/{challengeId}/related-events", controllers.ChallengeRelatedEvents(svcs.Events, logg))
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.EventList(svcs.Events, logg))
			r.With(middleware.RequireOrganizer(logg)).Post("/", controllers.EventCreate(svcs.Events, logg))
			r.Get("/joined", controllers.EventJoined(svcs.Events, logg))
			r.Get("/{eventId}", controllers.EventDetail(svcs.Events, logg))
			r.Post("/{eventId}/join", controllers.EventJoin(svcs.Events, logg))
			r.Delete("/{eventId}/join", controllers.EventLeave(svcs.Events, logg))
			r.Get("/{eventId}/related-challenges", controllers.EventRelatedChallenges(svcs.Events, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationList(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.NotificationMarkRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.NotificationMarkAllRead(svcs.Notifications, logg))
		})

		r.Route("/announcements", func(r chi.Router) {
			r.Get("/", controllers.AnnouncementList(svcs.Notifications, logg))
			r.With(middleware.RequireOrganizer(logg)).Post("/", controllers.AnnouncementCreate(svcs.Notifications, logg))
		})

		r.Route("/presence", func(r chi.Router) {
			r.Post("/heartbeat", controllers.PresenceHeartbeat(svcs.Presence, logg))
			r.Delete("/", controllers.PresenceOffline(svcs.Presence, logg))
			r.Get("/", controllers.PresenceList(svcs.Presence, logg))
		})

		r.Route("/profiles/me", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(svcs.Profiles, logg))
			r.Put("/", controllers.ProfileUpsert(svcs.Profiles, logg))
			r.Get("/stats", controllers.ProfileStats(svcs.Actions, logg))
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/community", controllers.CommunityStats(svcs.Actions, logg))
			r.Get("/leaderboard", controllers.Leaderboard(svcs.Actions, logg))
		})

		r.Route("/community", func(r chi.Router) {
			r.Get("/messages", controllers.CommunityMessageList(svcs.Community, logg))
			r.Post("/messages", controllers.CommunityMessagePost(svcs.Community, logg))
		})

		r.Route("/reference", func(r chi.Router) {
			r.Get("/projects", controllers.LocalProjectList(svcs.Community, logg))
			r.Get("/hotspots", controllers.HotspotList(svcs.Community, logg))
			r.With(middleware.RequireOrganizer(logg)).Post("/hotspots", controllers.HotspotReport(svcs.Community, logg))
			r.Get("/schedules", controllers.CollectionScheduleList(svcs.Community, logg))
		})

		r.Post("/scan/classify", controllers.ScanClassify(svcs.Scan, logg))
	})

	return r
}
