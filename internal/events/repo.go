package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
)

// Repository defines volunteer event persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.VolunteerEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error)
	List(ctx context.Context, from *time.Time) ([]models.VolunteerEvent, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error)
	AddVolunteer(ctx context.Context, eventID, userID uuid.UUID, at time.Time) (bool, error)
	RemoveVolunteer(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	CountVolunteers(ctx context.Context, eventID uuid.UUID) (int64, error)
	ListVolunteerIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)
	ListJoinedByUser(ctx context.Context, userID uuid.UUID) ([]models.VolunteerEvent, error)
	EnsureProfile(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an events repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.VolunteerEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
	var event models.VolunteerEvent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context, from *time.Time) ([]models.VolunteerEvent, error) {
	var rows []models.VolunteerEvent
	query := r.db.WithContext(ctx)
	if from != nil {
		query = query.Where("event_date >= ?", *from)
	}
	err := query.Order("event_date ASC").Find(&rows).Error
	return rows, err
}

// LockByID reads the event row under FOR UPDATE so concurrent joins against
// the same event serialize. Must run inside a transaction.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
	var event models.VolunteerEvent
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// AddVolunteer inserts the membership row, ignoring duplicates. Returns
// whether a new row was written.
func (r *repository) AddVolunteer(ctx context.Context, eventID, userID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO event_volunteers (event_id, user_id, joined_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (event_id, user_id) DO NOTHING`,
		eventID, userID, at,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) RemoveVolunteer(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventVolunteer{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CountVolunteers(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EventVolunteer{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

func (r *repository) ListVolunteerIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.EventVolunteer{}).
		Where("event_id = ?", eventID).
		Order("joined_at ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *repository) ListJoinedByUser(ctx context.Context, userID uuid.UUID) ([]models.VolunteerEvent, error) {
	var rows []models.VolunteerEvent
	err := r.db.WithContext(ctx).
		Table("volunteer_events ve").
		Select("ve.*").
		Joins("JOIN event_volunteers ev ON ev.event_id = ve.id").
		Where("ev.user_id = ?", userID).
		Order("ve.event_date ASC").
		Scan(&rows).Error
	return rows, err
}

// EnsureProfile creates the volunteer profile row if the user has none.
func (r *repository) EnsureProfile(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO volunteer_profiles (user_id) VALUES (?)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID,
	).Error
}
