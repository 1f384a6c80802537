package challenges

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
)

// Repository defines challenge persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, challenge *models.Challenge) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error)
	List(ctx context.Context) ([]models.Challenge, error)
	AddParticipant(ctx context.Context, challengeID, userID uuid.UUID) (bool, error)
	ListParticipantIDs(ctx context.Context, challengeID uuid.UUID) ([]uuid.UUID, error)
	ListJoinedByUser(ctx context.Context, userID uuid.UUID) ([]models.Challenge, error)
	CountParticipants(ctx context.Context, challengeID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a challenges repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *repository) List(ctx context.Context) ([]models.Challenge, error) {
	var rows []models.Challenge
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// AddParticipant inserts the membership row, ignoring duplicates. Returns
// whether a new row was written.
func (r *repository) AddParticipant(ctx context.Context, challengeID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO challenge_participants (challenge_id, user_id, joined_at)
		 VALUES (?, ?, now())
		 ON CONFLICT (challenge_id, user_id) DO NOTHING`,
		challengeID, userID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListParticipantIDs(ctx context.Context, challengeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ChallengeParticipant{}).
		Where("challenge_id = ?", challengeID).
		Order("joined_at ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *repository) ListJoinedByUser(ctx context.Context, userID uuid.UUID) ([]models.Challenge, error) {
	var rows []models.Challenge
	err := r.db.WithContext(ctx).
		Table("challenges c").
		Select("c.*").
		Joins("JOIN challenge_participants cp ON cp.challenge_id = c.id").
		Where("cp.user_id = ?", userID).
		Order("c.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) CountParticipants(ctx context.Context, challengeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ChallengeParticipant{}).
		Where("challenge_id = ?", challengeID).
		Count(&count).Error
	return count, err
}
