package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.IncrementStarted("qr")
	m.IncrementCompletion("completed")
	m.IncrementCompletion("completed")
	m.IncrementRejection("sanctions_match")
	m.IncrementCollaboratorFault("notify")
	m.ObserveSweep(3, 7)
	m.ObserveVerifierLatency("ok", 120*time.Millisecond)
	m.ObserveCompleteLatency(40 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted.WithLabelValues("qr")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Completions.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("sanctions_match")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CollaboratorFaults.WithLabelValues("notify")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SessionsExpired))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.PendingSessions))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementStarted("qr")
		m.IncrementCompletion("dropped")
		m.IncrementRejection("invalid_proof")
		m.IncrementCollaboratorFault("grant")
		m.SetPending(1)
		m.ObserveSweep(1, 0)
		m.ObserveVerifierLatency("error", time.Second)
		m.ObserveCompleteLatency(time.Second)
	})
}
