package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/pkg/types"
)

// LocalProject is a read-only reference entry describing an ongoing
// environmental project in the community.
type LocalProject struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Description string    `gorm:"column:description;type:text"`
	Organizer   string    `gorm:"column:organizer;type:text"`
	Website     *string   `gorm:"column:website;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// PollutionHotspot is a read-only reference entry for a reported pollution
// site. Locality is filled by reverse geocoding and falls back to raw
// coordinates when the geocoder is unavailable.
type PollutionHotspot struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string               `gorm:"column:name;type:text;not null"`
	Description string               `gorm:"column:description;type:text"`
	Point       types.GeographyPoint `gorm:"column:point;type:geography(Point,4326)"`
	Locality    string               `gorm:"column:locality;type:text"`
	Severity    int                  `gorm:"column:severity;not null;default:1"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// CollectionSchedule is a read-only reference entry describing a recurring
// waste collection slot.
type CollectionSchedule struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Area      string    `gorm:"column:area;type:text;not null"`
	WasteType string    `gorm:"column:waste_type;type:text;not null"`
	Weekday   string    `gorm:"column:weekday;type:text;not null"`
	TimeSlot  string    `gorm:"column:time_slot;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
