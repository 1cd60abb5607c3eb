package notifysync

import (
	"strconv"
	"time"

	"github.com/petrescue/admin-notifier/pkg/adminapi"
	"github.com/petrescue/admin-notifier/pkg/enums"
)

const (
	maxBadgeCount = 99
	dateLayout    = "1/2/2006"
)

// RelativeLabel formats the age of a notification for the dropdown.
func RelativeLabel(now, ts time.Time) string {
	age := now.Sub(ts)
	switch {
	case age < time.Minute:
		return "Just now"
	case age < time.Hour:
		return strconv.Itoa(int(age/time.Minute)) + "m"
	case age < 24*time.Hour:
		return strconv.Itoa(int(age/time.Hour)) + "h"
	case age < 7*24*time.Hour:
		return strconv.Itoa(int(age/(24*time.Hour))) + "d"
	default:
		return ts.Local().Format(dateLayout)
	}
}

// BadgeText is empty when nothing is unread so the badge can be hidden.
func BadgeText(count int) string {
	switch {
	case count <= 0:
		return ""
	case count > maxBadgeCount:
		return strconv.Itoa(maxBadgeCount) + "+"
	default:
		return strconv.Itoa(count)
	}
}

// Entry is one rendered row of the dropdown list.
type Entry struct {
	ID        adminapi.ID
	Message   string
	Type      enums.NotificationType
	TypeLabel string
	Age       string
	IsRead    bool
	RequestID adminapi.ID
}

// View is everything a renderer needs to draw an open dropdown.
type View struct {
	Entries     []Entry
	UnreadCount int
	Badge       string
}

// Empty reports whether the list has nothing to show.
func (v View) Empty() bool {
	return len(v.Entries) == 0
}

// BuildView maps a snapshot to one entry per notification, preserving order.
func BuildView(snapshot Snapshot, now time.Time) View {
	view := View{
		Entries:     make([]Entry, 0, len(snapshot.Notifications)),
		UnreadCount: snapshot.UnreadCount,
		Badge:       BadgeText(snapshot.UnreadCount),
	}
	for _, n := range snapshot.Notifications {
		view.Entries = append(view.Entries, Entry{
			ID:        n.ID,
			Message:   n.Message,
			Type:      n.Type,
			TypeLabel: n.Type.Label(),
			Age:       RelativeLabel(now, n.Timestamp),
			IsRead:    n.IsRead,
			RequestID: n.RequestID,
		})
	}
	return view
}
