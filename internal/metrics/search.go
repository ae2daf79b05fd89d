package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_requests_total",
			Help:      "Total number of product searches",
		},
		[]string{"enhanced", "status"},
	)

	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_stage_duration_seconds",
			Help:      "Duration of search stages in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"stage"}, // "fetch" / "rank"
	)

	SearchCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_candidates",
			Help:      "Candidates scored per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		},
	)

	SearchExpandedTerms = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_expanded_terms",
			Help:      "Expanded query variants per search",
			Buckets:   []float64{0, 1, 5, 10, 20, 40, 80},
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchStageDuration)
	prometheus.MustRegister(SearchCandidates)
	prometheus.MustRegister(SearchExpandedTerms)
	searchMetricsRegistered = true
}
