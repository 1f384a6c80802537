package actions

import (
	"github.com/google/uuid"
)

// UserStats is the per-user fold over the action ledger.
type UserStats struct {
	TotalActions   int64   `json:"total_actions"`
	TotalPoints    int64   `json:"total_points"`
	EventsAttended int64   `json:"events_attended"`
	TotalHours     float64 `json:"total_hours"`
}

// CommunityStats aggregates the whole ledger.
type CommunityStats struct {
	TotalActions int64 `json:"total_actions"`
	TotalPoints  int64 `json:"total_points"`
	ActiveUsers  int64 `json:"active_users"`
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	UserID       uuid.UUID `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	TotalPoints  int64     `json:"total_points"`
	TotalActions int64     `json:"total_actions"`
}
