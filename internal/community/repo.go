package community

import (
	"context"

	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/pagination"
)

// Repository defines community board and reference-data persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertMessage(ctx context.Context, message *models.CommunityMessage) error
	ListMessages(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.CommunityMessage, error)

	ListLocalProjects(ctx context.Context) ([]models.LocalProject, error)
	InsertHotspot(ctx context.Context, hotspot *models.PollutionHotspot) error
	ListHotspots(ctx context.Context) ([]models.PollutionHotspot, error)
	ListCollectionSchedules(ctx context.Context, area string) ([]models.CollectionSchedule, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a community repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) InsertMessage(ctx context.Context, message *models.CommunityMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) ListMessages(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.CommunityMessage, error) {
	query := r.db.WithContext(ctx)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.CommunityMessage
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *repository) ListLocalProjects(ctx context.Context) ([]models.LocalProject, error) {
	var rows []models.LocalProject
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) InsertHotspot(ctx context.Context, hotspot *models.PollutionHotspot) error {
	return r.db.WithContext(ctx).Create(hotspot).Error
}

func (r *repository) ListHotspots(ctx context.Context) ([]models.PollutionHotspot, error) {
	var rows []models.PollutionHotspot
	err := r.db.WithContext(ctx).Order("severity DESC, created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListCollectionSchedules(ctx context.Context, area string) ([]models.CollectionSchedule, error) {
	query := r.db.WithContext(ctx)
	if area != "" {
		query = query.Where("area = ?", area)
	}
	var rows []models.CollectionSchedule
	err := query.Order("area ASC, weekday ASC").Find(&rows).Error
	return rows, err
}
