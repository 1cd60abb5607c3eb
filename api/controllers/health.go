package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/petrescue/admin-notifier/api/responses"
	"github.com/petrescue/admin-notifier/pkg/config"
	"github.com/petrescue/admin-notifier/pkg/db"
	pkgerrors "github.com/petrescue/admin-notifier/pkg/errors"
	"github.com/petrescue/admin-notifier/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Healthz reports ok when the fixture database answers a ping.
func Healthz(cfg *config.Config, logg *logger.Logger, pinger db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PetRescue-Env", cfg.App.Env)
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable").
					WithDetails(map[string]any{"dependency": "database"}))
				return
			}
		}
		responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
