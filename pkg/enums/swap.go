package enums

import "fmt"

// SwapRequestStatus maps to the swap_request_status enum in Postgres.
// A (item, requester) pair owns exactly one row whose status walks the
// negotiation state machine; completed is terminal.
type SwapRequestStatus string

const (
	SwapRequestPending   SwapRequestStatus = "pending"
	SwapRequestAccepted  SwapRequestStatus = "accepted"
	SwapRequestDeclined  SwapRequestStatus = "declined"
	SwapRequestCancelled SwapRequestStatus = "cancelled"
	SwapRequestCompleted SwapRequestStatus = "completed"
)

var validSwapRequestStatuses = []SwapRequestStatus{
	SwapRequestPending,
	SwapRequestAccepted,
	SwapRequestDeclined,
	SwapRequestCancelled,
	SwapRequestCompleted,
}

// IsValid reports whether the value matches the canonical enum.
func (s SwapRequestStatus) IsValid() bool {
	for _, candidate := range validSwapRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsLive reports whether the pair still occupies a negotiation slot. A
// requester with a live row cannot file a second request for the same item.
func (s SwapRequestStatus) IsLive() bool {
	return s == SwapRequestPending || s == SwapRequestAccepted
}

// ParseSwapRequestStatus converts raw input into SwapRequestStatus.
func ParseSwapRequestStatus(value string) (SwapRequestStatus, error) {
	for _, candidate := range validSwapRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid swap request status %q", value)
}

// ItemCondition describes the physical state of a listed swap item.
type ItemCondition string

const (
	ItemConditionNew     ItemCondition = "new"
	ItemConditionLikeNew ItemCondition = "like_new"
	ItemConditionGood    ItemCondition = "good"
	ItemConditionFair    ItemCondition = "fair"
)

var validItemConditions = []ItemCondition{
	ItemConditionNew,
	ItemConditionLikeNew,
	ItemConditionGood,
	ItemConditionFair,
}

// IsValid reports whether the value matches the canonical enum.
func (c ItemCondition) IsValid() bool {
	for _, candidate := range validItemConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseItemCondition converts raw input into ItemCondition.
func ParseItemCondition(value string) (ItemCondition, error) {
	for _, candidate := range validItemConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item condition %q", value)
}
