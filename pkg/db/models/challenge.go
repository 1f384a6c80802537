package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/pkg/enums"
)

// Challenge is a time-boxed eco-action campaign. Lifecycle status is derived
// from the window at read time and never stored.
type Challenge struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string                  `gorm:"column:title;type:text;not null"`
	Description   string                  `gorm:"column:description;type:text"`
	Category      enums.ChallengeCategory `gorm:"column:category;type:challenge_category;not null;index:challenges_category_idx"`
	StartDate     *time.Time              `gorm:"column:start_date;type:timestamptz"`
	EndDate       *time.Time              `gorm:"column:end_date;type:timestamptz"`
	TargetActions int                     `gorm:"column:target_actions;not null;default:1"`
	BadgeName     string                  `gorm:"column:badge_name;type:text"`
	BadgeIcon     string                  `gorm:"column:badge_icon;type:text"`
	CreatedBy     uuid.UUID               `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
}

// ChallengeParticipant links a user to a challenge. Membership is
// append-only; there is no leave operation.
type ChallengeParticipant struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ChallengeID uuid.UUID `gorm:"column:challenge_id;type:uuid;not null;index:challenge_participants_challenge_id_idx;uniqueIndex:challenge_participants_pair_key"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:challenge_participants_user_id_idx;uniqueIndex:challenge_participants_pair_key"`
	JoinedAt    time.Time `gorm:"column:joined_at;type:timestamptz;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
