package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/petrescue/admin-notifier/pkg/config"
	"github.com/petrescue/admin-notifier/pkg/db"
	"github.com/petrescue/admin-notifier/pkg/db/models"
	"github.com/petrescue/admin-notifier/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&models.Notification{}))
	return conn
}

func insert(t *testing.T, repo Repository, typ enums.NotificationType, createdAt time.Time, read bool) models.Notification {
	t.Helper()
	n := models.Notification{
		RequestID: uuid.New(),
		Type:      typ,
		Message:   "report at " + createdAt.Format(time.RFC3339),
		CreatedAt: createdAt.UTC(),
	}
	if read {
		readAt := createdAt.Add(time.Minute).UTC()
		n.ReadAt = &readAt
	}
	require.NoError(t, repo.Create(context.Background(), &n))
	return n
}

func TestRepository_ListNewestFirstWithLimit(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	oldest := insert(t, repo, enums.NotificationTypeLostReport, fixedNow.Add(-3*time.Hour), false)
	middle := insert(t, repo, enums.NotificationTypeFoundReport, fixedNow.Add(-2*time.Hour), true)
	newest := insert(t, repo, enums.NotificationTypeLostReport, fixedNow.Add(-time.Hour), false)

	rows, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []uuid.UUID{newest.ID, middle.ID, oldest.ID}, []uuid.UUID{rows[0].ID, rows[1].ID, rows[2].ID})
	assert.True(t, rows[1].IsRead())
	assert.Equal(t, enums.NotificationTypeFoundReport, rows[1].Type)

	limited, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRepository_MarkReadIsIdempotent(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	n := insert(t, repo, enums.NotificationTypeLostReport, fixedNow.Add(-time.Hour), false)

	first, err := repo.MarkRead(ctx, n.ID, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, notificationMarkResult{Found: true, Updated: true}, first)

	second, err := repo.MarkRead(ctx, n.ID, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, notificationMarkResult{Found: true, Updated: false}, second)

	missing, err := repo.MarkRead(ctx, uuid.New(), fixedNow)
	require.NoError(t, err)
	assert.False(t, missing.Found)

	unread, err := repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)
}

func TestRepository_MarkAllReadAndCount(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	insert(t, repo, enums.NotificationTypeLostReport, fixedNow.Add(-time.Hour), false)
	insert(t, repo, enums.NotificationTypeFoundReport, fixedNow.Add(-2*time.Hour), false)
	insert(t, repo, enums.NotificationTypeFoundReport, fixedNow.Add(-3*time.Hour), true)

	unread, err := repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	updated, err := repo.MarkAllRead(ctx, fixedNow)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	unread, err = repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestRepository_DeleteOlderThanKeepsUnread(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	insert(t, repo, enums.NotificationTypeLostReport, fixedNow.Add(-60*24*time.Hour), true)
	oldUnread := insert(t, repo, enums.NotificationTypeLostReport, fixedNow.Add(-60*24*time.Hour), false)
	recentRead := insert(t, repo, enums.NotificationTypeFoundReport, fixedNow.Add(-time.Hour), true)

	deleted, err := repo.DeleteOlderThan(ctx, fixedNow.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	rows, err := repo.List(ctx, 10)
	require.NoError(t, err)
	ids := []uuid.UUID{rows[0].ID, rows[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{oldUnread.ID, recentRead.ID}, ids)
}

func TestSeed_FillsEmptyTableOnce(t *testing.T) {
	client := db.NewFromGorm(newTestDB(t), config.DBDriverSQLite)
	ctx := context.Background()

	inserted, err := Seed(ctx, client, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, len(seedRows), inserted)

	again, err := Seed(ctx, client, fixedNow)
	require.NoError(t, err)
	assert.Zero(t, again)

	repo := NewRepository(client.DB())
	unread, err := repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)
}
