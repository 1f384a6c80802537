package enums

import "fmt"

// ActionType maps to the action_type enum in Postgres. Each value names one
// kind of point-awarding activity recorded in the append-only ledger.
type ActionType string

const (
	ActionEventJoined     ActionType = "event_joined"
	ActionEventAttended   ActionType = "event_attended"
	ActionChallengeReward ActionType = "challenge_reward"
	ActionSwapCompleted   ActionType = "swap_completed"
	ActionWasteScanned    ActionType = "waste_scanned"
)

var validActionTypes = []ActionType{
	ActionEventJoined,
	ActionEventAttended,
	ActionChallengeReward,
	ActionSwapCompleted,
	ActionWasteScanned,
}

// DefaultPoints returns the standard award for the action type.
func (a ActionType) DefaultPoints() int {
	switch a {
	case ActionChallengeReward:
		return 50
	case ActionEventAttended:
		return 25
	case ActionEventJoined:
		return 10
	case ActionSwapCompleted:
		return 20
	case ActionWasteScanned:
		return 5
	default:
		return 0
	}
}

// IsValid reports whether the value matches the canonical enum.
func (a ActionType) IsValid() bool {
	for _, candidate := range validActionTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActionType converts raw input into ActionType.
func ParseActionType(value string) (ActionType, error) {
	for _, candidate := range validActionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid action type %q", value)
}
