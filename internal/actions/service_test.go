package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
)

type stubActionsRepo struct {
	inserted  []models.Action
	insertErr error

	userStats      UserStats
	progress       int64
	communityStats CommunityStats
	leaderboard    []LeaderboardEntry
}

func (s *stubActionsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubActionsRepo) Insert(ctx context.Context, action *models.Action) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, *action)
	return nil
}

func (s *stubActionsRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Action, error) {
	return s.inserted, nil
}

func (s *stubActionsRepo) UserStats(ctx context.Context, userID uuid.UUID) (UserStats, error) {
	return s.userStats, nil
}

func (s *stubActionsRepo) ChallengeProgress(ctx context.Context, challengeID, userID uuid.UUID) (int64, error) {
	return s.progress, nil
}

func (s *stubActionsRepo) CommunityStats(ctx context.Context) (CommunityStats, error) {
	return s.communityStats, nil
}

func (s *stubActionsRepo) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return s.leaderboard, nil
}

func TestApplyAppendsWithDefaultPoints(t *testing.T) {
	repo := &stubActionsRepo{}
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	userID := uuid.New()
	eventID := uuid.New()
	applied, err := svc.Apply(context.Background(), nil, Award{
		UserID:    userID,
		Type:      enums.ActionEventJoined,
		EventID:   &eventID,
		DedupeKey: EventJoinedKey(userID, eventID),
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !applied {
		t.Fatal("expected award to be applied")
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.inserted))
	}
	row := repo.inserted[0]
	if row.Points != enums.ActionEventJoined.DefaultPoints() {
		t.Fatalf("expected default points, got %d", row.Points)
	}
	if row.DedupeKey != EventJoinedKey(userID, eventID) {
		t.Fatalf("unexpected dedupe key %q", row.DedupeKey)
	}
}

func TestApplySwallowsDuplicateKey(t *testing.T) {
	repo := &stubActionsRepo{
		insertErr: errors.New(`duplicate key value violates unique constraint "actions_dedupe_key_key"`),
	}
	svc, _ := NewService(ServiceParams{Repo: repo})

	applied, err := svc.Apply(context.Background(), nil, Award{
		UserID:    uuid.New(),
		Type:      enums.ActionChallengeReward,
		DedupeKey: "challenge_reward:x",
	})
	if err != nil {
		t.Fatalf("duplicate should be a no-op, got %v", err)
	}
	if applied {
		t.Fatal("duplicate award must report not-applied")
	}
}

func TestApplyValidation(t *testing.T) {
	svc, _ := NewService(ServiceParams{Repo: &stubActionsRepo{}})

	cases := []struct {
		name  string
		award Award
	}{
		{"missing user", Award{Type: enums.ActionEventJoined, DedupeKey: "k"}},
		{"invalid type", Award{UserID: uuid.New(), Type: "unknown", DedupeKey: "k"}},
		{"missing dedupe key", Award{UserID: uuid.New(), Type: enums.ActionEventJoined}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Apply(context.Background(), nil, tc.award)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}

func TestApplyPropagatesOtherErrors(t *testing.T) {
	repo := &stubActionsRepo{insertErr: errors.New("connection reset")}
	svc, _ := NewService(ServiceParams{Repo: repo})

	_, err := svc.Apply(context.Background(), nil, Award{
		UserID:    uuid.New(),
		Type:      enums.ActionSwapCompleted,
		DedupeKey: "swap_completed:x",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency code, got %v", err)
	}
}

func TestDedupeKeyShapes(t *testing.T) {
	userID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	challengeID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	eventID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	if got := ChallengeRewardKey(userID, challengeID, eventID); got != "challenge_reward:11111111-1111-1111-1111-111111111111:22222222-2222-2222-2222-222222222222:33333333-3333-3333-3333-333333333333" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := EventJoinedKey(userID, eventID); got != "event_joined:11111111-1111-1111-1111-111111111111:33333333-3333-3333-3333-333333333333" {
		t.Fatalf("unexpected key %q", got)
	}
}
