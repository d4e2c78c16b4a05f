package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks short-link traffic. All methods are safe on a nil receiver.
type Metrics struct {
	LinksCreated prometheus.Counter

	// Code collisions that forced a regeneration
	Collisions prometheus.Counter

	// Resolutions by result: hit, miss, error
	Resolutions *prometheus.CounterVec
}

// New registers the metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LinksCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gatekeeper_shortlink_created_total",
			Help: "Short links created",
		}),
		Collisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "gatekeeper_shortlink_collisions_total",
			Help: "Generated short codes that were already taken",
		}),
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_shortlink_resolutions_total",
			Help: "Short link lookups by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.LinksCreated.Inc()
}

func (m *Metrics) IncrementCollision() {
	if m == nil {
		return
	}
	m.Collisions.Inc()
}

func (m *Metrics) IncrementResolution(result string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(result).Inc()
}
