package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/petrescue/admin-notifier/internal/poll"
	"github.com/petrescue/admin-notifier/pkg/logger"
)

const cleanupJobName = "notification-retention"

type cleanupJob struct {
	svc       Service
	retention time.Duration
	logg      *logger.Logger
}

// NewCleanupJob returns a scheduler job purging read notifications older than retention.
func NewCleanupJob(svc Service, retention time.Duration, logg *logger.Logger) (poll.Job, error) {
	if svc == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive")
	}
	return &cleanupJob{svc: svc, retention: retention, logg: logg}, nil
}

func (j *cleanupJob) Name() string { return cleanupJobName }

func (j *cleanupJob) Run(ctx context.Context) error {
	deleted, err := j.svc.PurgeOlderThan(ctx, j.retention)
	if err != nil {
		return err
	}
	if deleted > 0 {
		ctx = j.logg.WithField(ctx, "deleted", deleted)
		j.logg.Info(ctx, "purged expired notifications")
	}
	return nil
}
