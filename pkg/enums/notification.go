package enums

import "fmt"

// NotificationType identifies which kind of rescue report raised a notification.
type NotificationType string

const (
	NotificationTypeLostReport  NotificationType = "lost_report"
	NotificationTypeFoundReport NotificationType = "found_report"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeLostReport,
	NotificationTypeFoundReport,
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

// Label is the short human name shown next to a notification.
func (n NotificationType) Label() string {
	switch n {
	case NotificationTypeLostReport:
		return "Lost"
	case NotificationTypeFoundReport:
		return "Found"
	default:
		return string(n)
	}
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
