package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeSwapRequested  NotificationType = "swap_requested"
	NotificationTypeSwapAccepted   NotificationType = "swap_accepted"
	NotificationTypeSwapDeclined   NotificationType = "swap_declined"
	NotificationTypeSwapCompleted  NotificationType = "swap_completed"
	NotificationTypeEventJoined    NotificationType = "event_joined"
	NotificationTypeChallengeBadge NotificationType = "challenge_badge"
	NotificationTypeAnnouncement   NotificationType = "announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeSwapRequested,
	NotificationTypeSwapAccepted,
	NotificationTypeSwapDeclined,
	NotificationTypeSwapCompleted,
	NotificationTypeEventJoined,
	NotificationTypeChallengeBadge,
	NotificationTypeAnnouncement,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
