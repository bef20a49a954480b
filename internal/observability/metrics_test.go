package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics("supportdesk_test")

	m.RecordRequest("/tickets", "GET", 200, 15*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 5*time.Millisecond)
	m.RecordError("/tickets/:ticketId/rate", "POST", "ALREADY_RATED")
	m.RecordTicketOp("rate", "ALREADY_RATED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/tickets", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/tickets/:ticketId/rate", "POST", "ALREADY_RATED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticketOps.WithLabelValues("rate", "ALREADY_RATED")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordTicketOp("x", "ok")
	})
}
