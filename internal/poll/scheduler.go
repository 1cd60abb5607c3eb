package poll

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/petrescue/admin-notifier/pkg/errors"
	"github.com/petrescue/admin-notifier/pkg/logger"
	"github.com/petrescue/admin-notifier/pkg/metrics"
)

// DefaultInterval matches the admin UI's notification poll cadence.
const DefaultInterval = 30 * time.Second

// SchedulerParams configure the scheduler.
type SchedulerParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Metrics  *metrics.JobMetrics
	Interval time.Duration
	// SkipInitialRun waits one full interval before the first tick.
	SkipInitialRun bool
}

// Scheduler runs registered jobs on a fixed interval. There is no backoff or
// jitter: a failed tick is logged and the next tick runs on schedule.
type Scheduler struct {
	logg           *logger.Logger
	registry       *Registry
	metrics        *metrics.JobMetrics
	interval       time.Duration
	skipInitialRun bool
}

// NewScheduler builds a scheduler.
func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		logg:           params.Logger,
		registry:       registry,
		metrics:        params.Metrics,
		interval:       interval,
		skipInitialRun: params.SkipInitialRun,
	}, nil
}

// Interval reports the tick spacing.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run ticks until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !s.skipInitialRun {
		s.runCycle(ctx)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Debug(ctx, "poll scheduler context canceled")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	for _, job := range s.registry.Jobs() {
		if ctx.Err() != nil {
			return
		}
		s.runJob(ctx, job)
	}
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithFields(ctx, map[string]any{
		"job":   job.Name(),
		"event": "poll.job",
	})
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.ObserveDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.metrics.IncFailure(job.Name())
		// transient failures are retried by the next tick
		if pkgerrors.IsRetryable(err) {
			s.logg.WarnErr(jobCtx, "job failed", err)
			return
		}
		s.logg.Error(jobCtx, "job failed", err)
		return
	}
	s.logg.Debug(jobCtx, "job completed")
	s.metrics.IncSuccess(job.Name())
}
