package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/pkg/enums"
)

// SwapRequestedEvent signals a requester asked for an item.
type SwapRequestedEvent struct {
	ItemID      uuid.UUID `json:"item_id"`
	ItemTitle   string    `json:"item_title"`
	OwnerID     uuid.UUID `json:"owner_id"`
	RequesterID uuid.UUID `json:"requester_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// SwapDecisionEvent is emitted when the owner accepts or declines a request.
type SwapDecisionEvent struct {
	ItemID      uuid.UUID               `json:"item_id"`
	ItemTitle   string                  `json:"item_title"`
	OwnerID     uuid.UUID               `json:"owner_id"`
	RequesterID uuid.UUID               `json:"requester_id"`
	Status      enums.SwapRequestStatus `json:"status"`
	DecidedAt   time.Time               `json:"decided_at"`
}

// SwapCompletedEvent carries the terminal state of a swap.
type SwapCompletedEvent struct {
	ItemID       uuid.UUID `json:"item_id"`
	ItemTitle    string    `json:"item_title"`
	ItemCategory string    `json:"item_category"`
	OwnerID      uuid.UUID `json:"owner_id"`
	RequesterID  uuid.UUID `json:"requester_id"`
	CompletedAt  time.Time `json:"completed_at"`
}

// VolunteerJoinedEvent is emitted when a user joins a volunteer event.
type VolunteerJoinedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventTitle    string          `json:"event_title"`
	EventType     enums.EventType `json:"event_type"`
	UserID        uuid.UUID       `json:"user_id"`
	JoinedAt      time.Time       `json:"joined_at"`
	RewardPoints  int             `json:"reward_points"`
	MatchedBadges int             `json:"matched_badges"`
}

// VolunteerLeftEvent is emitted when a user leaves a volunteer event.
type VolunteerLeftEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	EventTitle string    `json:"event_title"`
	UserID     uuid.UUID `json:"user_id"`
	LeftAt     time.Time `json:"left_at"`
}

// ChallengeJoinedEvent is emitted when a user joins a challenge.
type ChallengeJoinedEvent struct {
	ChallengeID    uuid.UUID               `json:"challenge_id"`
	ChallengeTitle string                  `json:"challenge_title"`
	Category       enums.ChallengeCategory `json:"category"`
	UserID         uuid.UUID               `json:"user_id"`
	JoinedAt       time.Time               `json:"joined_at"`
}
