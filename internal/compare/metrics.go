package compare

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments the aggregator. A nil *Metrics disables recording, so
// tests can run without a registry.
type Metrics struct {
	comparisons    *prometheus.CounterVec
	entityFailures *prometheus.CounterVec
	retries        prometheus.Counter
	duration       prometheus.Histogram
}

// NewMetrics registers the engine's metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		comparisons: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finpulse",
			Subsystem: "compare",
			Name:      "comparisons_total",
			Help:      "Comparison invocations by outcome (full, partial, empty).",
		}, []string{"outcome"}),
		entityFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finpulse",
			Subsystem: "compare",
			Name:      "entity_failures_total",
			Help:      "Per-entity fetch failures by comparison kind.",
		}, []string{"kind"}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "finpulse",
			Subsystem: "compare",
			Name:      "fetch_retries_total",
			Help:      "Transient fetch failures that were retried.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "finpulse",
			Subsystem: "compare",
			Name:      "comparison_duration_seconds",
			Help:      "Wall time of a full comparison including fan-out.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeComparison(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.comparisons.WithLabelValues(outcome).Inc()
	m.duration.Observe(seconds)
}

func (m *Metrics) observeEntityFailure(kind Kind) {
	if m == nil {
		return
	}
	m.entityFailures.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) observeRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}
