package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/pkg/enums"
)

// SwapItem is a swappable physical good listed by one owner.
type SwapItem struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;index:swap_items_owner_id_idx"`
	Title       string              `gorm:"column:title;type:text;not null"`
	Description string              `gorm:"column:description;type:text"`
	Category    string              `gorm:"column:category;type:text;not null"`
	Condition   enums.ItemCondition `gorm:"column:condition;type:item_condition;not null"`
	IsAvailable bool                `gorm:"column:is_available;not null;default:true"`
	SwappedWith *uuid.UUID          `gorm:"column:swapped_with;type:uuid"`
	SwappedAt   *time.Time          `gorm:"column:swapped_at;type:timestamptz"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// SwapRequest is the single negotiation row owned by an (item, requester)
// pair. State transitions advance this row in place; there is never more than
// one row per pair.
type SwapRequest struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID      uuid.UUID               `gorm:"column:item_id;type:uuid;not null;index:swap_requests_item_id_idx;uniqueIndex:swap_requests_item_requester_key"`
	RequesterID uuid.UUID               `gorm:"column:requester_id;type:uuid;not null;index:swap_requests_requester_id_idx;uniqueIndex:swap_requests_item_requester_key"`
	Status      enums.SwapRequestStatus `gorm:"column:status;type:swap_request_status;not null;default:'pending'"`
	RequestedAt time.Time               `gorm:"column:requested_at;type:timestamptz;not null"`
	RespondedAt *time.Time              `gorm:"column:responded_at;type:timestamptz"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// CompletedSwap is the immutable audit record written exactly once per
// successful completion. The unique index on item_id backstops exactly-once.
type CompletedSwap struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID       uuid.UUID `gorm:"column:item_id;type:uuid;not null;uniqueIndex:completed_swaps_item_id_key"`
	OwnerID      uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index:completed_swaps_owner_id_idx"`
	RequesterID  uuid.UUID `gorm:"column:requester_id;type:uuid;not null;index:completed_swaps_requester_id_idx"`
	ItemTitle    string    `gorm:"column:item_title;type:text;not null"`
	ItemCategory string    `gorm:"column:item_category;type:text;not null"`
	CompletedAt  time.Time `gorm:"column:completed_at;type:timestamptz;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
