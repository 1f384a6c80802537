package swaps

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
)

// Repository defines swap persistence. Every status transition lives here as
// a conditional update so races serialize on the row's current status.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateItem(ctx context.Context, item *models.SwapItem) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.SwapItem, error)
	ListAvailableItems(ctx context.Context, limit int) ([]models.SwapItem, error)
	MarkItemSwapped(ctx context.Context, itemID, swappedWith uuid.UUID, at time.Time) (bool, error)

	FindRequest(ctx context.Context, itemID, requesterID uuid.UUID) (*models.SwapRequest, error)
	UpsertPendingRequest(ctx context.Context, itemID, requesterID uuid.UUID, at time.Time) error
	TransitionRequest(ctx context.Context, itemID, requesterID uuid.UUID, from, to enums.SwapRequestStatus, at time.Time) (bool, error)
	CancelRequest(ctx context.Context, itemID, requesterID uuid.UUID, at time.Time) (bool, error)
	ListRequestsForItem(ctx context.Context, itemID uuid.UUID, statuses []enums.SwapRequestStatus) ([]models.SwapRequest, error)
	ListRequestsByUser(ctx context.Context, requesterID uuid.UUID) ([]models.SwapRequest, error)

	InsertCompletedSwap(ctx context.Context, row *models.CompletedSwap) error
	ListCompletedByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.CompletedSwap, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a swaps repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateItem(ctx context.Context, item *models.SwapItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.SwapItem, error) {
	var item models.SwapItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListAvailableItems(ctx context.Context, limit int) ([]models.SwapItem, error) {
	var rows []models.SwapItem
	err := r.db.WithContext(ctx).
		Where("is_available = TRUE").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkItemSwapped flips availability off and stamps the counterparty, but
// only while the item is still available. Zero rows means the item was
// already swapped.
func (r *repository) MarkItemSwapped(ctx context.Context, itemID, swappedWith uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SwapItem{}).
		Where("id = ? AND is_available = TRUE", itemID).
		Updates(map[string]interface{}{
			"is_available": false,
			"swapped_with": swappedWith,
			"swapped_at":   at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindRequest(ctx context.Context, itemID, requesterID uuid.UUID) (*models.SwapRequest, error) {
	var row models.SwapRequest
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND requester_id = ?", itemID, requesterID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpsertPendingRequest writes the single (item, requester) row back to
// pending. A fresh pair inserts; a declined or cancelled pair is revived in
// place. Live rows must be rejected by the caller before reaching here.
func (r *repository) UpsertPendingRequest(ctx context.Context, itemID, requesterID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO swap_requests (item_id, requester_id, status, requested_at)
		 VALUES (?, ?, 'pending', ?)
		 ON CONFLICT (item_id, requester_id)
		 DO UPDATE SET status = 'pending', requested_at = EXCLUDED.requested_at,
		               responded_at = NULL, updated_at = now()`,
		itemID, requesterID, at,
	).Error
}

// TransitionRequest performs the compare-and-swap advance of a request row.
// Zero rows affected means the row was not in the expected state.
func (r *repository) TransitionRequest(ctx context.Context, itemID, requesterID uuid.UUID, from, to enums.SwapRequestStatus, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SwapRequest{}).
		Where("item_id = ? AND requester_id = ? AND status = ?", itemID, requesterID, from).
		Updates(map[string]interface{}{
			"status":       to,
			"responded_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CancelRequest moves a pending or accepted row to cancelled. Zero rows
// affected means the row was already terminal or absent.
func (r *repository) CancelRequest(ctx context.Context, itemID, requesterID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SwapRequest{}).
		Where("item_id = ? AND requester_id = ? AND status IN (?, ?)",
			itemID, requesterID, enums.SwapRequestPending, enums.SwapRequestAccepted).
		Updates(map[string]interface{}{
			"status":       enums.SwapRequestCancelled,
			"responded_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListRequestsForItem(ctx context.Context, itemID uuid.UUID, statuses []enums.SwapRequestStatus) ([]models.SwapRequest, error) {
	var rows []models.SwapRequest
	query := r.db.WithContext(ctx).Where("item_id = ?", itemID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Order("requested_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListRequestsByUser(ctx context.Context, requesterID uuid.UUID) ([]models.SwapRequest, error) {
	var rows []models.SwapRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("requested_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) InsertCompletedSwap(ctx context.Context, row *models.CompletedSwap) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) ListCompletedByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.CompletedSwap, error) {
	var rows []models.CompletedSwap
	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR requester_id = ?", userID, userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
