package enums

import "fmt"

// EventType maps to the volunteer_event_type enum in Postgres.
type EventType string

const (
	EventTypeCleanup          EventType = "cleanup"
	EventTypeTreePlanting     EventType = "tree_planting"
	EventTypeWorkshop         EventType = "workshop"
	EventTypeCommunityService EventType = "community_service"
)

var validEventTypes = []EventType{
	EventTypeCleanup,
	EventTypeTreePlanting,
	EventTypeWorkshop,
	EventTypeCommunityService,
}

// IsValid reports whether the value matches the canonical enum.
func (e EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventType converts raw input into EventType.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
