// Package metrics records solver events in a prometheus registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"q.log/gomory/simplex"
)

// Metrics implements simplex.Observer. It is safe for concurrent use by
// several solvers.
type Metrics struct {
	registry *prometheus.Registry

	Pivots           *prometheus.CounterVec
	DegeneratePivots *prometheus.CounterVec
	Cuts             prometheus.Counter
	Solves           *prometheus.CounterVec
	SolveDuration    prometheus.Histogram
}

var _ simplex.Observer = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.Pivots = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gomory_pivots_total",
		Help: "Pivots performed, by phase.",
	}, []string{"phase"})
	m.DegeneratePivots = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gomory_degenerate_pivots_total",
		Help: "Pivots with a zero minimum ratio, by phase.",
	}, []string{"phase"})
	m.Cuts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gomory_cuts_total",
		Help: "Gomory cutting planes added.",
	})
	m.Solves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gomory_solves_total",
		Help: "Finished solves, by outcome.",
	}, []string{"outcome"})
	m.SolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gomory_solve_duration_seconds",
		Help:    "Wall time of a solve.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
	m.registry.MustRegister(m.Pivots, m.DegeneratePivots, m.Cuts, m.Solves, m.SolveDuration)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Pivot(phase string) {
	m.Pivots.WithLabelValues(phase).Inc()
}

func (m *Metrics) DegeneratePivot(phase string) {
	m.DegeneratePivots.WithLabelValues(phase).Inc()
}

func (m *Metrics) Cut() {
	m.Cuts.Inc()
}

func (m *Metrics) Solved(outcome string, elapsed time.Duration) {
	m.Solves.WithLabelValues(outcome).Inc()
	m.SolveDuration.Observe(elapsed.Seconds())
}

// WriteFile writes the registry in the textfile collector format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
