package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Extraction Prometheus metrics.
var (
	VSMCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snowball",
			Name:      "vsm_cache_total",
			Help:      "Vector space model cache lookups",
		},
		[]string{"result"}, // "hit" / "miss" / "corrupt"
	)

	VSMBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "snowball",
			Name:      "vsm_build_duration_seconds",
			Help:      "Vector space model build duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	TuplesBuiltTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snowball",
			Name:      "tuples_built_total",
			Help:      "Candidate tuples built, by vectorization mode",
		},
		[]string{"mode"},
	)

	TuplesDuplicateTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "snowball",
			Name:      "tuples_duplicate_total",
			Help:      "Candidate tuples dropped as duplicates",
		},
	)

	PatternsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snowball",
			Name:      "patterns_total",
			Help:      "Between-context pattern extraction outcomes",
		},
		[]string{"outcome"}, // "active" / "passive" / "none"
	)
)

var registerOnce sync.Once

// Register registers extraction and HTTP metrics on the default registry.
// Calls after the first are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			VSMCacheTotal,
			VSMBuildDuration,
			TuplesBuiltTotal,
			TuplesDuplicateTotal,
			PatternsTotal,
			HTTPRequestDuration,
			HTTPRequestsTotal,
			HTTPRequestsInFlight,
		)
	})
}
