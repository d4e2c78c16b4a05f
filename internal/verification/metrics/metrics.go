package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
// All methods are safe on a nil receiver.
type Metrics struct {
	// Sessions started by delivery mode
	SessionsStarted *prometheus.CounterVec

	// Completion results: dropped, rejected, unknown_session, completed
	Completions *prometheus.CounterVec

	// Rejections by reason code
	Rejections *prometheus.CounterVec

	// Collaborator failures by step: fetch_member, add_role, notify
	CollaboratorFaults *prometheus.CounterVec

	// Sessions waiting for a callback
	PendingSessions prometheus.Gauge

	// Sessions removed by the sweeper
	SessionsExpired prometheus.Counter

	// External verifier round trip
	VerifierLatency *prometheus.HistogramVec

	// Side-effect phase of a completion
	CompleteLatency prometheus.Histogram
}

// New registers the metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on reg. Tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_verification_sessions_started_total",
			Help: "Verification sessions started by delivery mode",
		}, []string{"delivery_mode"}),

		Completions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_verification_completions_total",
			Help: "Verification callbacks by completion status",
		}, []string{"status"}),

		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_verification_rejections_total",
			Help: "Rejected verification results by reason",
		}, []string{"reason"}),

		CollaboratorFaults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_verification_collaborator_faults_total",
			Help: "Failed chat platform calls after a successful verification, by step",
		}, []string{"step"}),

		PendingSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gatekeeper_verification_pending_sessions",
			Help: "Verification sessions awaiting a callback",
		}),

		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "gatekeeper_verification_sessions_expired_total",
			Help: "Verification sessions dropped by the expiry sweep",
		}),

		VerifierLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gatekeeper_verification_verifier_duration_seconds",
			Help:    "Duration of external proof verification calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"result"}), // result: "ok" or the failure category

		CompleteLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatekeeper_verification_complete_duration_seconds",
			Help:    "Duration of completion side effects (role grant and notification)",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) IncrementStarted(deliveryMode string) {
	if m != nil {
		m.SessionsStarted.WithLabelValues(deliveryMode).Inc()
	}
}

func (m *Metrics) IncrementCompletion(status string) {
	if m != nil {
		m.Completions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementRejection(reason string) {
	if m != nil {
		m.Rejections.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementCollaboratorFault(step string) {
	if m != nil {
		m.CollaboratorFaults.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) SetPending(n int) {
	if m != nil {
		m.PendingSessions.Set(float64(n))
	}
}

// ObserveSweep records a sweep result. Satisfies session.Observer.
func (m *Metrics) ObserveSweep(removed, pending int) {
	if m != nil {
		m.SessionsExpired.Add(float64(removed))
		m.PendingSessions.Set(float64(pending))
	}
}

func (m *Metrics) ObserveVerifierLatency(result string, d time.Duration) {
	if m != nil {
		m.VerifierLatency.WithLabelValues(result).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveCompleteLatency(d time.Duration) {
	if m != nil {
		m.CompleteLatency.Observe(d.Seconds())
	}
}
