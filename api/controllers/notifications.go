package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/petrescue/admin-notifier/api/responses"
	"github.com/petrescue/admin-notifier/api/validators"
	"github.com/petrescue/admin-notifier/internal/notifications"
	"github.com/petrescue/admin-notifier/pkg/db/models"
	"github.com/petrescue/admin-notifier/pkg/enums"
	pkgerrors "github.com/petrescue/admin-notifier/pkg/errors"
	"github.com/petrescue/admin-notifier/pkg/logger"
	"github.com/petrescue/admin-notifier/pkg/pagination"
)

type unreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type notificationListResponse struct {
	Notifications []notificationResponse `json:"notifications"`
}

type notificationResponse struct {
	ID               string          `json:"id"`
	Message          string          `json:"message"`
	NotificationType string          `json:"notification_type"`
	Timestamp        time.Time       `json:"timestamp"`
	IsRead           bool            `json:"is_read"`
	Request          requestResponse `json:"request"`
}

type requestResponse struct {
	ID string `json:"id"`
}

type confirmationResponse struct {
	Success bool  `json:"success"`
	Updated int64 `json:"updated,omitempty"`
}

type createNotificationRequest struct {
	NotificationType string `json:"notification_type" validate:"required,notification_type"`
	Message          string `json:"message" validate:"max=500"`
	RequestID        string `json:"request_id" validate:"omitempty,uuid"`
}

func toNotificationResponse(n models.Notification) notificationResponse {
	return notificationResponse{
		ID:               n.ID.String(),
		Message:          n.Message,
		NotificationType: string(n.Type),
		Timestamp:        n.CreatedAt.UTC(),
		IsRead:           n.IsRead(),
		Request:          requestResponse{ID: n.RequestID.String()},
	}
}

// UnreadCount returns the number of unread admin notifications.
func UnreadCount(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		count, err := svc.UnreadCount(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, unreadCountResponse{UnreadCount: count})
	}
}

// ListNotifications returns the newest notifications first.
func ListNotifications(svc notifications.Service, defaultLimit int, logg *logger.Logger) http.HandlerFunc {
	defaultLimit = pagination.NormalizeLimit(defaultLimit, pagination.DefaultLimit)
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), notifications.ListParams{Limit: limit})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := notificationListResponse{Notifications: make([]notificationResponse, 0, len(rows))}
		for _, row := range rows {
			resp.Notifications = append(resp.Notifications, toNotificationResponse(row))
		}
		responses.WriteJSON(w, http.StatusOK, resp)
	}
}

// MarkNotificationRead marks one notification read; repeating it is harmless.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "notificationId"))
		id, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found"))
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithNotificationID(ctx, id.String())
		}

		if err := svc.MarkRead(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, confirmationResponse{Success: true})
	}
}

// MarkAllNotificationsRead marks every unread notification read.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		updated, err := svc.MarkAllRead(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, confirmationResponse{Success: true, Updated: updated})
	}
}

// CreateNotification simulates a lost or found report arriving.
func CreateNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		var body createNotificationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := notifications.CreateInput{
			Type:    enums.NotificationType(body.NotificationType),
			Message: body.Message,
		}
		if body.RequestID != "" {
			input.RequestID = uuid.MustParse(body.RequestID)
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, toNotificationResponse(*created))
	}
}
