package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Job run results.
const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// JobMetrics records runs of jobs driven by the poll scheduler.
type JobMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewJobMetrics registers poll job metrics. A nil registerer yields a no-op recorder.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	m := &JobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poll_job_runs_total",
			Help: "Poll job executions by job and result.",
		}, []string{"job", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poll_job_duration_seconds",
			Help:    "Wall time of poll job executions.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"job"}),
	}
	reg.MustRegister(m.runs, m.duration)
	return m
}

func (m *JobMetrics) ObserveDuration(job string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(job)).Observe(elapsed.Seconds())
}

func (m *JobMetrics) IncSuccess(job string) { m.incRun(job, resultSuccess) }

func (m *JobMetrics) IncFailure(job string) { m.incRun(job, resultFailure) }

func (m *JobMetrics) incRun(job, result string) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.WithLabelValues(normalizeLabel(job), result).Inc()
}

// normalizeLabel keeps empty label values out of the exported series.
func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
