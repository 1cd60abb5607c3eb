package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petrescue/admin-notifier/pkg/db"
	"github.com/petrescue/admin-notifier/pkg/db/models"
	"github.com/petrescue/admin-notifier/pkg/enums"
)

type seedRow struct {
	typ     enums.NotificationType
	message string
	age     time.Duration
	read    bool
}

var seedRows = []seedRow{
	{enums.NotificationTypeLostReport, "Lost report: golden retriever \"Maple\" near Riverside Park.", 40 * time.Second, false},
	{enums.NotificationTypeFoundReport, "Found report: grey tabby cat on Elm Street.", 12 * time.Minute, false},
	{enums.NotificationTypeLostReport, "Lost report: green-cheeked conure escaped in Oak Hills.", 5 * time.Hour, false},
	{enums.NotificationTypeFoundReport, "Found report: black labrador mix with red collar.", 3 * 24 * time.Hour, true},
	{enums.NotificationTypeLostReport, "Lost report: dwarf rabbit \"Clover\", last seen Monday.", 12 * 24 * time.Hour, true},
}

// Seed fills an empty notifications table with sample reports. It reports how
// many rows were inserted; a populated table is left alone.
func Seed(ctx context.Context, client *db.Client, now time.Time) (int, error) {
	inserted := 0
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		existing, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		for _, row := range seedRows {
			n := &models.Notification{
				RequestID: uuid.New(),
				Type:      row.typ,
				Message:   row.message,
				CreatedAt: now.Add(-row.age).UTC(),
			}
			if row.read {
				readAt := n.CreatedAt.Add(time.Minute)
				n.ReadAt = &readAt
			}
			if err := repo.Create(ctx, n); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
