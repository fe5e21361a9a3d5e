package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMetrics_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics(reg)

	m.ObserveRequest("list_tickets", 200, 15*time.Millisecond)
	m.ObserveRequest("list_tickets", 200, 5*time.Millisecond)
	m.ObserveRequest("list_tickets", 500, time.Millisecond)
	m.ObserveRequest("assign_ticket", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("list_tickets", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("list_tickets", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("assign_ticket", "0")))

	count, err := testutil.GatherAndCount(reg, "kamdesk_client_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestClientMetrics_Precondition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics(reg)

	m.ObservePrecondition("precondition:empty_comment")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.local.WithLabelValues("precondition:empty_comment")))
}

func TestClientMetrics_NilSafe(t *testing.T) {
	var m *ClientMetrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("x", 200, time.Second)
		m.ObservePrecondition("y")
	})
}
