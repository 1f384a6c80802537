package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/ceijey/greenguardian-backend/pkg/db"
	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
)

// Award describes one ledger append.
type Award struct {
	UserID      uuid.UUID
	Type        enums.ActionType
	Points      int
	ChallengeID *uuid.UUID
	EventID     *uuid.UUID
	DedupeKey   string
}

// Service is the single entry point into the action ledger. Every counter is
// folded from appended rows; nothing increments in place.
type Service interface {
	Apply(ctx context.Context, tx *gorm.DB, award Award) (bool, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.Action, error)
	UserStats(ctx context.Context, userID uuid.UUID) (UserStats, error)
	ChallengeProgress(ctx context.Context, challengeID, userID uuid.UUID) (int64, error)
	CommunityStats(ctx context.Context) (CommunityStats, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// ServiceParams groups dependencies for the ledger service.
type ServiceParams struct {
	Repo Repository
}

type service struct {
	repo Repository
}

// NewService builds the ledger service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actions repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// Apply appends one award to the ledger. A duplicate dedupe key means the
// award was already applied, so the violation is swallowed and Apply reports
// false. Callers may pass a transaction to make the append atomic with their
// own writes.
func (s *service) Apply(ctx context.Context, tx *gorm.DB, award Award) (bool, error) {
	if award.UserID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !award.Type.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid action type %q", award.Type))
	}
	if strings.TrimSpace(award.DedupeKey) == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "dedupe key is required")
	}

	points := award.Points
	if points == 0 {
		points = award.Type.DefaultPoints()
	}

	row := models.Action{
		UserID:      award.UserID,
		Type:        award.Type,
		Points:      points,
		ChallengeID: award.ChallengeID,
		EventID:     award.EventID,
		DedupeKey:   award.DedupeKey,
	}

	repo := s.repo.WithTx(tx)
	if err := repo.Insert(ctx, &row); err != nil {
		if dbpkg.IsUniqueViolation(err, "actions_dedupe_key_key") {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger action")
	}
	return true, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.Action, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger actions")
	}
	return rows, nil
}

func (s *service) UserStats(ctx context.Context, userID uuid.UUID) (UserStats, error) {
	if userID == uuid.Nil {
		return UserStats{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	stats, err := s.repo.UserStats(ctx, userID)
	if err != nil {
		return UserStats{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fold user stats")
	}
	return stats, nil
}

func (s *service) ChallengeProgress(ctx context.Context, challengeID, userID uuid.UUID) (int64, error) {
	if challengeID == uuid.Nil || userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "challenge id and user id are required")
	}
	count, err := s.repo.ChallengeProgress(ctx, challengeID, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count challenge progress")
	}
	return count, nil
}

func (s *service) CommunityStats(ctx context.Context) (CommunityStats, error) {
	stats, err := s.repo.CommunityStats(ctx)
	if err != nil {
		return CommunityStats{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fold community stats")
	}
	return stats, nil
}

func (s *service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.repo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build leaderboard")
	}
	return rows, nil
}

// ChallengeRewardKey builds the dedupe key guarding one challenge reward per
// (user, challenge, event) triple.
func ChallengeRewardKey(userID, challengeID, eventID uuid.UUID) string {
	return fmt.Sprintf("challenge_reward:%s:%s:%s", userID, challengeID, eventID)
}

// EventJoinedKey builds the dedupe key guarding one join award per (user, event).
func EventJoinedKey(userID, eventID uuid.UUID) string {
	return fmt.Sprintf("event_joined:%s:%s", userID, eventID)
}

// SwapCompletedKey builds the dedupe key guarding one completion award per
// (user, item).
func SwapCompletedKey(userID, itemID uuid.UUID) string {
	return fmt.Sprintf("swap_completed:%s:%s", userID, itemID)
}

// WasteScannedKey builds the dedupe key for one scan award.
func WasteScannedKey(userID uuid.UUID, scanID string) string {
	return fmt.Sprintf("waste_scanned:%s:%s", userID, scanID)
}
