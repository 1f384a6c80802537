package scan

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/internal/actions"
	"github.com/ceijey/greenguardian-backend/pkg/classify"
	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
)

type stubClassifier struct {
	result *classify.Result
	err    error
	calls  int
}

func (s *stubClassifier) Classify(ctx context.Context, req classify.Request) (*classify.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubLimiter struct {
	allowed bool
	scope   string
}

func (s *stubLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	s.scope = scope
	return s.allowed, 1, nil
}

type stubActionsService struct {
	awards []actions.Award
}

func (s *stubActionsService) Apply(ctx context.Context, tx *gorm.DB, award actions.Award) (bool, error) {
	s.awards = append(s.awards, award)
	return true, nil
}

func (s *stubActionsService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.Action, error) {
	return nil, nil
}

func (s *stubActionsService) UserStats(ctx context.Context, userID uuid.UUID) (actions.UserStats, error) {
	return actions.UserStats{}, nil
}

func (s *stubActionsService) ChallengeProgress(ctx context.Context, challengeID, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *stubActionsService) CommunityStats(ctx context.Context) (actions.CommunityStats, error) {
	return actions.CommunityStats{}, nil
}

func (s *stubActionsService) Leaderboard(ctx context.Context, limit int) ([]actions.LeaderboardEntry, error) {
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, cls classifier, limiter rateLimiter, acts actions.Service) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Classifier: cls, Limiter: limiter, Actions: acts, Tx: stubTxRunner{}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestScanAwardsPoints(t *testing.T) {
	cls := &stubClassifier{result: &classify.Result{Category: "plastic", Recyclable: true, Confidence: 0.92}}
	limiter := &stubLimiter{allowed: true}
	acts := &stubActionsService{}
	svc := newTestService(t, cls, limiter, acts)

	userID := uuid.New()
	result, err := svc.Scan(context.Background(), userID, "aW1hZ2U=")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Classification.Category != "plastic" {
		t.Fatalf("unexpected classification %+v", result.Classification)
	}
	if result.PointsAwarded != 5 {
		t.Fatalf("expected 5 points, got %d", result.PointsAwarded)
	}
	if result.ScanID == "" {
		t.Fatal("expected a scan id")
	}
	if len(acts.awards) != 1 || acts.awards[0].DedupeKey != actions.WasteScannedKey(userID, result.ScanID) {
		t.Fatalf("unexpected award %+v", acts.awards)
	}
	if limiter.scope != "scan:"+userID.String() {
		t.Fatalf("rate limit scope should be per-user, got %q", limiter.scope)
	}
}

func TestScanRateLimited(t *testing.T) {
	cls := &stubClassifier{result: &classify.Result{Category: "glass"}}
	svc := newTestService(t, cls, &stubLimiter{allowed: false}, &stubActionsService{})

	_, err := svc.Scan(context.Background(), uuid.New(), "aW1hZ2U=")
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if cls.calls != 0 {
		t.Fatal("rate-limited scans must not reach the classifier")
	}
}

func TestScanClassifierFailureNoAward(t *testing.T) {
	cls := &stubClassifier{err: pkgerrors.New(pkgerrors.CodeDependency, "classifier unavailable")}
	acts := &stubActionsService{}
	svc := newTestService(t, cls, &stubLimiter{allowed: true}, acts)

	_, err := svc.Scan(context.Background(), uuid.New(), "aW1hZ2U=")
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(acts.awards) != 0 {
		t.Fatal("failed scans must not award points")
	}
}

func TestScanRejectsOversizedImage(t *testing.T) {
	cls := &stubClassifier{result: &classify.Result{Category: "plastic"}}
	limiter := &stubLimiter{allowed: true}
	svc := newTestService(t, cls, limiter, &stubActionsService{})

	oversized := strings.Repeat("A", MaxImageBytes+1)
	_, err := svc.Scan(context.Background(), uuid.New(), oversized)
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if cls.calls != 0 {
		t.Fatal("oversized payloads must not reach the classifier")
	}
	if limiter.scope != "" {
		t.Fatal("oversized payloads must be rejected before the rate limiter")
	}
}

func TestScanValidation(t *testing.T) {
	svc := newTestService(t, &stubClassifier{}, &stubLimiter{allowed: true}, &stubActionsService{})

	if _, err := svc.Scan(context.Background(), uuid.Nil, "aW1hZ2U="); err == nil {
		t.Fatal("missing user should fail")
	}
	if _, err := svc.Scan(context.Background(), uuid.New(), "  "); err == nil {
		t.Fatal("blank image should fail")
	}
}
