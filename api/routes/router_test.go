package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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
	pkgauth "github.com/ceijey/greenguardian-backend/pkg/auth"
	"github.com/ceijey/greenguardian-backend/pkg/auth/session"
	"github.com/ceijey/greenguardian-backend/pkg/config"
	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	"github.com/ceijey/greenguardian-backend/pkg/logger"
	"github.com/ceijey/greenguardian-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest, clientIP string) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest, clientIP string) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error { return nil }

type stubSwapsService struct{}

func (stubSwapsService) CreateItem(ctx context.Context, ownerID uuid.UUID, input swaps.CreateItemInput) (*models.SwapItem, error) {
	return &models.SwapItem{}, nil
}

func (stubSwapsService) GetItem(ctx context.Context, itemID uuid.UUID) (*models.SwapItem, error) {
	return &models.SwapItem{}, nil
}

func (stubSwapsService) ListAvailableItems(ctx context.Context, limit int) ([]models.SwapItem, error) {
	return nil, nil
}

func (stubSwapsService) Request(ctx context.Context, itemID, requesterID uuid.UUID) (*models.SwapRequest, error) {
	return &models.SwapRequest{}, nil
}

func (stubSwapsService) Accept(ctx context.Context, ownerID, itemID, requesterID uuid.UUID) error {
	return nil
}

func (stubSwapsService) Decline(ctx context.Context, ownerID, itemID, requesterID uuid.UUID) error {
	return nil
}

func (stubSwapsService) CancelRequest(ctx context.Context, itemID, requesterID uuid.UUID) error {
	return nil
}

func (stubSwapsService) Complete(ctx context.Context, ownerID, itemID, requesterID uuid.UUID) (*models.CompletedSwap, error) {
	return &models.CompletedSwap{}, nil
}

func (stubSwapsService) ListRequestsForItem(ctx context.Context, ownerID, itemID uuid.UUID) ([]models.SwapRequest, error) {
	return nil, nil
}

func (stubSwapsService) ListMyRequests(ctx context.Context, requesterID uuid.UUID) ([]models.SwapRequest, error) {
	return nil, nil
}

func (stubSwapsService) ListCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]models.CompletedSwap, error) {
	return nil, nil
}

type stubChallengesService struct{}

func (stubChallengesService) Create(ctx context.Context, actor challenges.Actor, input challenges.CreateInput) (*challenges.ChallengeView, error) {
	return &challenges.ChallengeView{}, nil
}

func (stubChallengesService) List(ctx context.Context, now time.Time) ([]challenges.ChallengeView, error) {
	return nil, nil
}

func (stubChallengesService) Get(ctx context.Context, id uuid.UUID, now time.Time) (*challenges.ChallengeView, error) {
	return &challenges.ChallengeView{}, nil
}

func (stubChallengesService) Join(ctx context.Context, actor challenges.Actor, challengeID uuid.UUID, now time.Time) (bool, error) {
	return true, nil
}

func (stubChallengesService) Joined(ctx context.Context, userID uuid.UUID, now time.Time) ([]challenges.ChallengeView, error) {
	return nil, nil
}

func (stubChallengesService) Progress(ctx context.Context, challengeID, userID uuid.UUID) (*challenges.ProgressView, error) {
	return &challenges.ProgressView{}, nil
}

type stubEventsService struct{}

func (stubEventsService) Create(ctx context.Context, actor events.Actor, input events.CreateInput) (*events.EventView, error) {
	return &events.EventView{}, nil
}

func (stubEventsService) List(ctx context.Context, upcomingOnly bool, now time.Time) ([]events.EventView, error) {
	return nil, nil
}

func (stubEventsService) Get(ctx context.Context, id uuid.UUID) (*events.EventView, error) {
	return &events.EventView{}, nil
}

func (stubEventsService) Join(ctx context.Context, actor events.Actor, eventID uuid.UUID, now time.Time) (*events.JoinResult, error) {
	return &events.JoinResult{}, nil
}

func (stubEventsService) Leave(ctx context.Context, actor events.Actor, eventID uuid.UUID, now time.Time) error {
	return nil
}

func (stubEventsService) Joined(ctx context.Context, userID uuid.UUID) ([]models.VolunteerEvent, error) {
	return nil, nil
}

func (stubEventsService) RelatedChallenges(ctx context.Context, eventID uuid.UUID, now time.Time) ([]models.Challenge, error) {
	return nil, nil
}

func (stubEventsService) RelatedEvents(ctx context.Context, challengeID uuid.UUID, now time.Time) ([]models.VolunteerEvent, error) {
	return nil, nil
}

type stubPresenceService struct{}

func (stubPresenceService) Heartbeat(ctx context.Context, userID uuid.UUID) error  { return nil }
func (stubPresenceService) SetOffline(ctx context.Context, userID uuid.UUID) error { return nil }

func (stubPresenceService) List(ctx context.Context, now time.Time) ([]presence.Entry, error) {
	return nil, nil
}

func (stubPresenceService) Prune(ctx context.Context, now time.Time) (int, error) { return 0, nil }

type stubProfilesService struct{}

func (stubProfilesService) Upsert(ctx context.Context, userID uuid.UUID, input profiles.UpsertInput) (*profiles.ProfileView, error) {
	return &profiles.ProfileView{}, nil
}

func (stubProfilesService) Get(ctx context.Context, userID uuid.UUID) (*profiles.ProfileView, error) {
	return &profiles.ProfileView{}, nil
}

type stubActionsService struct{}

func (stubActionsService) Apply(ctx context.Context, tx *gorm.DB, award actions.Award) (bool, error) {
	return false, nil
}

func (stubActionsService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.Action, error) {
	return nil, nil
}

func (stubActionsService) UserStats(ctx context.Context, userID uuid.UUID) (actions.UserStats, error) {
	return actions.UserStats{}, nil
}

func (stubActionsService) ChallengeProgress(ctx context.Context, challengeID, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubActionsService) CommunityStats(ctx context.Context) (actions.CommunityStats, error) {
	return actions.CommunityStats{}, nil
}

func (stubActionsService) Leaderboard(ctx context.Context, limit int) ([]actions.LeaderboardEntry, error) {
	return nil, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params pagination.Params) (*notifications.Page, error) {
	return &notifications.Page{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) CreateAnnouncement(ctx context.Context, actorID uuid.UUID, role enums.UserRole, input notifications.AnnouncementInput) (*models.Announcement, error) {
	return &models.Announcement{}, nil
}

func (stubNotificationsService) ListAnnouncements(ctx context.Context, now time.Time) ([]models.Announcement, error) {
	return nil, nil
}

func (stubNotificationsService) ExpireAnnouncements(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type stubCommunityService struct{}

func (stubCommunityService) PostMessage(ctx context.Context, userID uuid.UUID, body string) (*models.CommunityMessage, error) {
	return &models.CommunityMessage{}, nil
}

func (stubCommunityService) ListMessages(ctx context.Context, params pagination.Params) (*community.MessagePage, error) {
	return &community.MessagePage{}, nil
}

func (stubCommunityService) ListLocalProjects(ctx context.Context) ([]models.LocalProject, error) {
	return nil, nil
}

func (stubCommunityService) ReportHotspot(ctx context.Context, actorID uuid.UUID, role enums.UserRole, input community.HotspotInput) (*models.PollutionHotspot, error) {
	return &models.PollutionHotspot{}, nil
}

func (stubCommunityService) ListHotspots(ctx context.Context) ([]models.PollutionHotspot, error) {
	return nil, nil
}

func (stubCommunityService) ListCollectionSchedules(ctx context.Context, area string) ([]models.CollectionSchedule, error) {
	return nil, nil
}

type stubScanService struct{}

func (stubScanService) Scan(ctx context.Context, userID uuid.UUID, imageBase64 string) (*scan.ScanResult, error) {
	return &scan.ScanResult{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // redis optional, idempotency disabled
		stubSessionChecker{},
		Services{
			Auth:          stubAuthService{},
			Swaps:         stubSwapsService{},
			Challenges:    stubChallengesService{},
			Events:        stubEventsService{},
			Presence:      stubPresenceService{},
			Profiles:      stubProfilesService{},
			Actions:       stubActionsService{},
			Notifications: stubNotificationsService{},
			Community:     stubCommunityService{},
			Scan:          stubScanService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-GreenGuardian-Env") != "test" {
		t.Fatal("missing environment header")
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/swap/items", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/swap/items", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestChallengeCreateRequiresOrganizer(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"title":"Plastic-free week","category":"recycling","target_actions":5}`

	member := httptest.NewRequest(http.MethodPost, "/api/v1/challenges", strings.NewReader(body))
	member.Header.Set("Content-Type", "application/json")
	member.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, member)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member got %d", resp.Code)
	}

	organizer := httptest.NewRequest(http.MethodPost, "/api/v1/challenges", strings.NewReader(body))
	organizer.Header.Set("Content-Type", "application/json")
	organizer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleOrganizer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, organizer)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for organizer got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuthRoutesArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"email":"volunteer@example.com","password":"long-enough-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLogoutRequiresToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
