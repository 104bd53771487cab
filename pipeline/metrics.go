package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors. A nil-safe zero
// value is not provided; use NewMetrics, or NewNopMetrics in tests.
type Metrics struct {
	generations   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	fallbacks     *prometheus.CounterVec
	repairs       prometheus.Counter
	inFlight      prometheus.Gauge
}

// NewMetrics builds the collector set and registers it with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripweave",
			Name:      "generations_total",
			Help:      "Completed itinerary generations by outcome.",
		}, []string{"outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tripweave",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each generation stage.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 45, 90},
		}, []string{"stage"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripweave",
			Name:      "fallbacks_total",
			Help:      "Times a stage substituted fallback content.",
		}, []string{"stage"}),
		repairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tripweave",
			Name:      "skeleton_repairs_total",
			Help:      "Skeletons whose day list needed normalization.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tripweave",
			Name:      "generations_in_flight",
			Help:      "Generations currently running.",
		}),
	}
	reg.MustRegister(m.generations, m.stageDuration, m.fallbacks, m.repairs, m.inFlight)
	return m
}

// NewNopMetrics returns collectors that record into an unregistered set,
// for tests and callers without a registry.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func (m *Metrics) observeStage(stage string, started time.Time) {
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}
