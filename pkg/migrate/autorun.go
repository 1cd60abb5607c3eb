package migrate

import (
	"context"
	"fmt"

	"github.com/petrescue/admin-notifier/pkg/config"
	"github.com/petrescue/admin-notifier/pkg/db"
	"github.com/petrescue/admin-notifier/pkg/logger"
)

// MaybeRunDev brings the fixture schema up to date from the embedded
// migrations. It does nothing outside dev or when auto-migrate is off.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || client == nil {
		return fmt.Errorf("config and db client are required")
	}
	if !cfg.App.IsDev() || !cfg.DevServer.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"event":  "migrate.auto",
		"driver": client.Driver(),
	})
	if err := RunEmbedded(ctx, sqlDB, client.Driver(), "up"); err != nil {
		return fmt.Errorf("auto-migrate %s: %w", client.Driver(), err)
	}
	logg.Info(ctx, "embedded migrations applied")
	return nil
}
