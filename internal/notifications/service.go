package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petrescue/admin-notifier/pkg/db/models"
	"github.com/petrescue/admin-notifier/pkg/enums"
	pkgerrors "github.com/petrescue/admin-notifier/pkg/errors"
	"github.com/petrescue/admin-notifier/pkg/pagination"
)

// Service defines the admin notification operations served by the fixture API.
type Service interface {
	UnreadCount(ctx context.Context) (int64, error)
	List(ctx context.Context, params ListParams) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	Create(ctx context.Context, input CreateInput) (*models.Notification, error)
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

type service struct {
	repo         Repository
	defaultLimit int
	now          func() time.Time
}

// ServiceParams wires a notifications service.
type ServiceParams struct {
	Repo         Repository
	DefaultLimit int
	Clock        func() time.Time
}

// ListParams configures a notification list query.
type ListParams struct {
	Limit int
}

// CreateInput describes a notification raised for a new lost or found report.
type CreateInput struct {
	Type      enums.NotificationType
	Message   string
	RequestID uuid.UUID
}

// NewService wires notifications dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:         params.Repo,
		defaultLimit: pagination.NormalizeLimit(params.DefaultLimit, pagination.DefaultLimit),
		now:          clock,
	}, nil
}

func (s *service) UnreadCount(ctx context.Context) (int64, error) {
	count, err := s.repo.CountUnread(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]models.Notification, error) {
	rows, err := s.repo.List(ctx, pagination.NormalizeLimit(params.Limit, s.defaultLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return rows, nil
}

// MarkRead succeeds for already-read notifications; only unknown ids fail.
func (s *service) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Notification, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type").
			WithDetails(map[string]any{"notification_type": string(input.Type)})
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		message = defaultMessage(input.Type)
	}
	requestID := input.RequestID
	if requestID == uuid.Nil {
		requestID = uuid.New()
	}

	notification := &models.Notification{
		RequestID: requestID,
		Type:      input.Type,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return notification, nil
}

// PurgeOlderThan deletes read notifications older than the retention window.
func (s *service) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "retention must be positive")
	}
	deleted, err := s.repo.DeleteOlderThan(ctx, s.now().UTC().Add(-retention))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge notifications")
	}
	return deleted, nil
}

func defaultMessage(t enums.NotificationType) string {
	switch t {
	case enums.NotificationTypeFoundReport:
		return "A new found pet report was submitted."
	default:
		return "A new lost pet report was submitted."
	}
}
