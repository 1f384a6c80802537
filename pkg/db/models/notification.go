package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index:notifications_user_id_idx"`
	Type      enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Title     string                 `gorm:"column:title;type:text;not null"`
	Message   string                 `gorm:"column:message;type:text;not null"`
	Link      *string                `gorm:"column:link;type:text"`
	ReadAt    *time.Time             `gorm:"column:read_at;type:timestamptz"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}

// Announcement is an organizer-authored broadcast visible to every user
// while its window is open.
type Announcement struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string     `gorm:"column:title;type:text;not null"`
	Message   string     `gorm:"column:message;type:text;not null"`
	CreatedBy uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	StartsAt  time.Time  `gorm:"column:starts_at;type:timestamptz;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;type:timestamptz"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// CommunityMessage is one post on the community board.
type CommunityMessage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:community_messages_user_id_idx"`
	Body      string    `gorm:"column:body;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
