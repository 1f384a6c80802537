package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/pkg/enums"
)

// Action is one immutable row in the append-only point ledger. Every counter
// shown to users is computed by folding these rows; nothing increments in
// place. The dedupe key makes applying the same award twice a no-op.
type Action struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index:actions_user_id_idx"`
	Type        enums.ActionType `gorm:"column:type;type:action_type;not null"`
	Points      int              `gorm:"column:points;not null"`
	ChallengeID *uuid.UUID       `gorm:"column:challenge_id;type:uuid;index:actions_challenge_id_idx"`
	EventID     *uuid.UUID       `gorm:"column:event_id;type:uuid;index:actions_event_id_idx"`
	DedupeKey   string           `gorm:"column:dedupe_key;type:text;not null;uniqueIndex:actions_dedupe_key_key"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
}
