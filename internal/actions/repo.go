package actions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
)

// Repository defines the persistence surface of the action ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, action *models.Action) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Action, error)
	UserStats(ctx context.Context, userID uuid.UUID) (UserStats, error)
	ChallengeProgress(ctx context.Context, challengeID, userID uuid.UUID) (int64, error)
	CommunityStats(ctx context.Context) (CommunityStats, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an action ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, action *models.Action) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Action, error) {
	var rows []models.Action
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

type userStatsRecord struct {
	TotalActions   int64
	TotalPoints    int64
	EventsAttended int64
}

func (r *repository) UserStats(ctx context.Context, userID uuid.UUID) (UserStats, error) {
	var record userStatsRecord
	err := r.db.WithContext(ctx).
		Model(&models.Action{}).
		Select(
			"COUNT(*) AS total_actions, "+
				"COALESCE(SUM(points), 0) AS total_points, "+
				"COUNT(*) FILTER (WHERE type IN (?, ?)) AS events_attended",
			enums.ActionEventJoined, enums.ActionEventAttended,
		).
		Where("user_id = ?", userID).
		Scan(&record).Error
	if err != nil {
		return UserStats{}, err
	}

	var totalHours float64
	err = r.db.WithContext(ctx).
		Table("actions a").
		Select("COALESCE(SUM(e.duration_hours), 0)").
		Joins("JOIN volunteer_events e ON e.id = a.event_id").
		Where("a.user_id = ? AND a.type IN (?, ?)", userID, enums.ActionEventJoined, enums.ActionEventAttended).
		Scan(&totalHours).Error
	if err != nil {
		return UserStats{}, err
	}

	return UserStats{
		TotalActions:   record.TotalActions,
		TotalPoints:    record.TotalPoints,
		EventsAttended: record.EventsAttended,
		TotalHours:     totalHours,
	}, nil
}

func (r *repository) ChallengeProgress(ctx context.Context, challengeID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Action{}).
		Where("challenge_id = ? AND user_id = ? AND type = ?", challengeID, userID, enums.ActionChallengeReward).
		Count(&count).Error
	return count, err
}

func (r *repository) CommunityStats(ctx context.Context) (CommunityStats, error) {
	var stats CommunityStats
	err := r.db.WithContext(ctx).
		Model(&models.Action{}).
		Select("COUNT(*) AS total_actions, COALESCE(SUM(points), 0) AS total_points, COUNT(DISTINCT user_id) AS active_users").
		Scan(&stats).Error
	return stats, err
}

func (r *repository) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var rows []LeaderboardEntry
	err := r.db.WithContext(ctx).
		Table("actions a").
		Select("a.user_id, u.display_name, COALESCE(SUM(a.points), 0) AS total_points, COUNT(*) AS total_actions").
		Joins("JOIN users u ON u.id = a.user_id").
		Group("a.user_id, u.display_name").
		Order("total_points DESC").
		Order("total_actions DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
