package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for notification API calls.
const (
	OutcomeSuccess      = "success"
	OutcomeNetworkError = "network_error"
	OutcomeParseError   = "parse_error"
	OutcomeRejected     = "rejected"
)

// SyncMetrics tracks the notification synchronizer's traffic and reconciliation.
type SyncMetrics struct {
	requests *prometheus.CounterVec
	stale    *prometheus.CounterVec
	unread   prometheus.Gauge
	renders  *prometheus.CounterVec
}

// NewSyncMetrics registers synchronizer metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_api_requests_total",
		Help: "Notification API calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_stale_results_total",
		Help: "Fetch results discarded because a newer request or local mutation superseded them.",
	}, []string{"kind"})
	unread := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notification_unread_count",
		Help: "Unread count currently displayed by the synchronizer.",
	})
	renders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dropdown_renders_total",
		Help: "Dropdown list renders by presentation.",
	}, []string{"presentation"})
	reg.MustRegister(requests, stale, unread, renders)
	return &SyncMetrics{
		requests: requests,
		stale:    stale,
		unread:   unread,
		renders:  renders,
	}
}

// ObserveRequest counts one API call.
func (m *SyncMetrics) ObserveRequest(operation, outcome string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// IncStale counts a discarded fetch result of the given kind (count or list).
func (m *SyncMetrics) IncStale(kind string) {
	if m == nil || m.stale == nil {
		return
	}
	m.stale.WithLabelValues(normalizeLabel(kind)).Inc()
}

// SetUnread records the unread count shown in the badge.
func (m *SyncMetrics) SetUnread(count int) {
	if m == nil || m.unread == nil {
		return
	}
	m.unread.Set(float64(count))
}

// IncRender counts one list render for a presentation.
func (m *SyncMetrics) IncRender(presentation string) {
	if m == nil || m.renders == nil {
		return
	}
	m.renders.WithLabelValues(normalizeLabel(presentation)).Inc()
}
