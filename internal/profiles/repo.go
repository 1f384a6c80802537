package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
)

// Repository defines volunteer profile persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, profile *models.VolunteerProfile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.VolunteerProfile, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a profiles repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, profile *models.VolunteerProfile) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO volunteer_profiles (user_id, skills, availability)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id)
		 DO UPDATE SET skills = EXCLUDED.skills,
		               availability = EXCLUDED.availability,
		               updated_at = now()`,
		profile.UserID, profile.Skills, profile.Availability,
	).Error
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.VolunteerProfile, error) {
	var profile models.VolunteerProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
