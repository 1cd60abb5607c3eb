package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/petrescue/admin-notifier/api/controllers"
	"github.com/petrescue/admin-notifier/api/middleware"
	"github.com/petrescue/admin-notifier/internal/notifications"
	"github.com/petrescue/admin-notifier/pkg/config"
	"github.com/petrescue/admin-notifier/pkg/db"
	"github.com/petrescue/admin-notifier/pkg/logger"
	"github.com/petrescue/admin-notifier/pkg/metrics"
)

// NewRouter exposes the admin notification endpoints the dropdown polls,
// plus health and metrics for the dev server.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	notificationsService notifications.Service,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Get("/healthz", controllers.Healthz(cfg, logg, dbP))
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/admin/notifications", func(r chi.Router) {
		r.Use(middleware.CSRF(logg))

		r.Get("/", controllers.ListNotifications(notificationsService, cfg.DevServer.ListLimit, logg))
		r.Get("/unread-count/", controllers.UnreadCount(notificationsService, logg))
		r.Post("/mark-read/{notificationId}/", controllers.MarkNotificationRead(notificationsService, logg))
		r.Post("/mark-all-read/", controllers.MarkAllNotificationsRead(notificationsService, logg))
		if !cfg.App.IsProd() {
			r.Post("/", controllers.CreateNotification(notificationsService, logg))
		}
	})

	return r
}
