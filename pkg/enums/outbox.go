package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSwapItem       OutboxAggregateType = "swap_item"
	AggregateVolunteerEvent OutboxAggregateType = "volunteer_event"
	AggregateChallenge      OutboxAggregateType = "challenge"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSwapItem,
	AggregateVolunteerEvent,
	AggregateChallenge,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventSwapRequested   OutboxEventType = "swap.requested"
	EventSwapAccepted    OutboxEventType = "swap.accepted"
	EventSwapDeclined    OutboxEventType = "swap.declined"
	EventSwapCompleted   OutboxEventType = "swap.completed"
	EventVolunteerJoined OutboxEventType = "event.joined"
	EventVolunteerLeft   OutboxEventType = "event.left"
	EventChallengeJoined OutboxEventType = "challenge.joined"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSwapRequested,
	EventSwapAccepted,
	EventSwapDeclined,
	EventSwapCompleted,
	EventVolunteerJoined,
	EventVolunteerLeft,
	EventChallengeJoined,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxDLQErrorReason classifies why a row landed in the dead letter queue.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

var validOutboxDLQErrorReasons = []OutboxDLQErrorReason{
	OutboxDLQReasonMaxAttempts,
	OutboxDLQReasonNonRetryable,
}

// IsValid reports whether the value matches the canonical DLQ reason enum.
func (r OutboxDLQErrorReason) IsValid() bool {
	for _, candidate := range validOutboxDLQErrorReasons {
		if candidate == r {
			return true
		}
	}
	return false
}
