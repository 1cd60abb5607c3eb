package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petrescue/admin-notifier/pkg/enums"
)

// Notification is an admin alert raised when a lost or found report is filed.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:varchar(36);primaryKey"`
	RequestID uuid.UUID              `gorm:"type:varchar(36);not null"`
	Type      enums.NotificationType `gorm:"type:varchar(32);not null"`
	Message   string                 `gorm:"type:text;not null"`
	ReadAt    *time.Time             `gorm:"type:timestamp"`
	CreatedAt time.Time              `gorm:"type:timestamp;not null"`
}

// BeforeCreate assigns ids and timestamps the database does not default.
func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return nil
}

// IsRead reports whether the notification has been acknowledged.
func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}
