package adminapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/petrescue/admin-notifier/pkg/enums"
)

// ID is an opaque server identifier. The production API emits integer primary
// keys while the fixture server emits UUID strings; both decode into ID.
type ID string

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts JSON strings and numbers; null decodes to the empty ID.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Notification is the client's read-mostly copy of a server notification.
type Notification struct {
	ID        ID
	Message   string
	Type      enums.NotificationType
	Timestamp time.Time
	IsRead    bool
	RequestID ID
}

// Confirmation is returned by the mutation endpoints.
type Confirmation struct {
	Success bool
	Updated int
}

type unreadCountPayload struct {
	UnreadCount *int `json:"unread_count" validate:"required,min=0"`
}

type listPayload struct {
	Notifications []notificationPayload `json:"notifications" validate:"required,dive"`
}

type notificationPayload struct {
	ID        ID              `json:"id" validate:"required"`
	Message   string          `json:"message"`
	Type      string          `json:"notification_type" validate:"required,oneof=lost_report found_report"`
	Timestamp *time.Time      `json:"timestamp" validate:"required"`
	IsRead    bool            `json:"is_read"`
	Request   *requestPayload `json:"request"`
}

type requestPayload struct {
	ID ID `json:"id"`
}

type confirmationPayload struct {
	Success *bool `json:"success"`
	Updated int   `json:"updated"`
}

func (p notificationPayload) toNotification() Notification {
	n := Notification{
		ID:      p.ID,
		Message: p.Message,
		Type:    enums.NotificationType(p.Type),
		IsRead:  p.IsRead,
	}
	if p.Timestamp != nil {
		n.Timestamp = *p.Timestamp
	}
	if p.Request != nil {
		n.RequestID = p.Request.ID
	}
	return n
}
