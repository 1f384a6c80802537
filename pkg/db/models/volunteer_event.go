package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/pkg/enums"
)

// VolunteerEvent is a scheduled in-person activity with a capacity-bounded
// volunteer set.
type VolunteerEvent struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string          `gorm:"column:title;type:text;not null"`
	Description   string          `gorm:"column:description;type:text"`
	Type          enums.EventType `gorm:"column:type;type:volunteer_event_type;not null;index:volunteer_events_type_idx"`
	Location      string          `gorm:"column:location;type:text"`
	EventDate     time.Time       `gorm:"column:event_date;type:timestamptz;not null;index:volunteer_events_event_date_idx"`
	DurationHours float64         `gorm:"column:duration_hours;not null;default:2"`
	MaxVolunteers int             `gorm:"column:max_volunteers;not null;default:0"`
	CreatedBy     uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// EventVolunteer links a user to an event. Unlike challenges, membership is
// symmetric: join and leave are both supported.
type EventVolunteer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID   uuid.UUID `gorm:"column:event_id;type:uuid;not null;index:event_volunteers_event_id_idx;uniqueIndex:event_volunteers_pair_key"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:event_volunteers_user_id_idx;uniqueIndex:event_volunteers_pair_key"`
	JoinedAt  time.Time `gorm:"column:joined_at;type:timestamptz;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// VolunteerProfile holds a user's volunteer metadata. Hour and event counters
// are folded from the action ledger rather than stored here.
type VolunteerProfile struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Skills       string    `gorm:"column:skills;type:text"`
	Availability string    `gorm:"column:availability;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
