// Package metrics exposes Prometheus instrumentation for the helpdesk client.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClientMetrics counts API calls by operation and outcome. A nil
// *ClientMetrics is valid and records nothing.
type ClientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	local    *prometheus.CounterVec
}

// NewClientMetrics registers the client collectors on reg.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	factory := promauto.With(reg)
	return &ClientMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kamdesk",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Helpdesk API requests, labeled by operation and HTTP status (0 for transport errors)",
		}, []string{"operation", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kamdesk",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Duration of helpdesk API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		local: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kamdesk",
			Subsystem: "client",
			Name:      "precondition_failures_total",
			Help:      "Actions rejected locally before any request was sent",
		}, []string{"code"}),
	}
}

// ObserveRequest records one completed (or failed) API call.
func (m *ClientMetrics) ObserveRequest(operation string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(operation).Observe(took.Seconds())
}

// ObservePrecondition records an action rejected before reaching the network.
func (m *ClientMetrics) ObservePrecondition(code string) {
	if m == nil {
		return
	}
	m.local.WithLabelValues(code).Inc()
}
