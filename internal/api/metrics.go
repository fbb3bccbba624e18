package api

import "github.com/prometheus/client_golang/prometheus"

// Computation outcomes reported on episim_computations_total.
const (
	outcomeOK       = "ok"
	outcomeCached   = "cached"
	outcomeInvalid  = "invalid"
	outcomeCanceled = "canceled"
	outcomeError    = "error"
)

type Metrics struct {
	computations      *prometheus.CounterVec
	duration          prometheus.Histogram
	cacheHits         prometheus.Counter
	earlyTerminations prometheus.Counter
}

// NewMetrics registers the server collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		computations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "episim_computations_total",
				Help: "Trajectory requests by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "episim_computation_duration_seconds",
				Help:    "Time spent integrating uncached trajectories",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
		cacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "episim_cache_hits_total",
				Help: "Trajectories served from the cache",
			},
		),
		earlyTerminations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "episim_early_terminations_total",
				Help: "Trajectories that stopped before max_steps because a compartment went negative",
			},
		),
	}
	reg.MustRegister(m.computations, m.duration, m.cacheHits, m.earlyTerminations)
	return m
}
