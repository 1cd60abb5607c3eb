package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/petrescue/admin-notifier/api/routes"
	"github.com/petrescue/admin-notifier/internal/notifications"
	"github.com/petrescue/admin-notifier/internal/poll"
	"github.com/petrescue/admin-notifier/pkg/config"
	"github.com/petrescue/admin-notifier/pkg/db"
	"github.com/petrescue/admin-notifier/pkg/logger"
	"github.com/petrescue/admin-notifier/pkg/metrics"
	"github.com/petrescue/admin-notifier/pkg/migrate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "devserver"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "devserver",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	if cfg.DevServer.Seed {
		inserted, err := notifications.Seed(context.Background(), dbClient, time.Now())
		if err != nil {
			logg.Error(context.Background(), "failed to seed notifications", err)
			os.Exit(1)
		}
		if inserted > 0 {
			logg.Info(logg.WithField(context.Background(), "inserted", inserted), "seeded sample notifications")
		}
	}

	service, err := notifications.NewService(notifications.ServiceParams{
		Repo:         notifications.NewRepository(dbClient.DB()),
		DefaultLimit: cfg.DevServer.ListLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cleanupJob, err := notifications.NewCleanupJob(service, time.Duration(cfg.DevServer.RetentionDays)*24*time.Hour, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create retention job", err)
		os.Exit(1)
	}
	scheduler, err := poll.NewScheduler(poll.SchedulerParams{
		Logger:   logg,
		Registry: poll.NewRegistry(cleanupJob),
		Metrics:  metrics.NewJobMetrics(registry),
		Interval: cfg.DevServer.CleanupInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create retention scheduler", err)
		os.Exit(1)
	}

	addr := ":" + cfg.DevServer.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, service, metrics.NewHTTPMetrics(registry), registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"db_driver": dbClient.Driver(),
	})
	logg.Info(ctx, "starting notification dev server")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := scheduler.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	runErr := group.Wait()
	if err := multierr.Append(runErr, dbClient.Close()); err != nil {
		logg.Error(ctx, "dev server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "dev server shutting down gracefully")
}
