package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petrescue/admin-notifier/pkg/db/models"
)

// Repository exposes persistence helpers for admin notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, limit int) ([]models.Notification, error)
	Count(ctx context.Context) (int64, error)
	CountUnread(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	MarkAllRead(ctx context.Context, now time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type notificationMarkResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Notification{})
}

func unread(db *gorm.DB) *gorm.DB {
	return db.Where("read_at IS NULL")
}

// List returns up to limit notifications, newest first.
func (r *repositoryImpl) List(ctx context.Context, limit int) ([]models.Notification, error) {
	var rows []models.Notification
	if err := r.table(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.table(ctx).Count(&total).Error
	return total, err
}

func (r *repositoryImpl) CountUnread(ctx context.Context) (int64, error) {
	var total int64
	err := r.table(ctx).Scopes(unread).Count(&total).Error
	return total, err
}

// MarkRead stamps read_at on an unread notification. Found is false when the
// id does not exist; Updated is false when it was already read.
func (r *repositoryImpl) MarkRead(ctx context.Context, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	var mark notificationMarkResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Notification
		err := tx.Select("id", "read_at").Where("id = ?", notificationID).Take(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		mark.Found = true
		if current.IsRead() {
			return nil
		}
		result := tx.Model(&models.Notification{}).
			Where("id = ?", notificationID).
			Scopes(unread).
			UpdateColumn("read_at", now)
		if result.Error != nil {
			return result.Error
		}
		mark.Updated = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return notificationMarkResult{}, err
	}
	return mark, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, now time.Time) (int64, error) {
	result := r.table(ctx).Scopes(unread).UpdateColumn("read_at", now)
	return result.RowsAffected, result.Error
}

// DeleteOlderThan removes read notifications created before cutoff. Unread
// notifications are kept regardless of age.
func (r *repositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ? AND read_at IS NOT NULL", cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
