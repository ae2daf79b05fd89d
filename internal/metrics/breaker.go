package metrics

import "github.com/prometheus/client_golang/prometheus"

// Store circuit breaker Prometheus metrics.
var (
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "store_breaker_state",
			Help:      "Store circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	BreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "store_breaker_transitions_total",
			Help:      "Store circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	BreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "store_breaker_requests_total",
			Help:      "Store calls through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success" / "failure" / "rejected"
	)
)

var breakerMetricsRegistered bool

// RegisterBreakerMetrics registers Prometheus breaker metrics. Must be called once from main.
func RegisterBreakerMetrics() {
	if breakerMetricsRegistered {
		return
	}
	prometheus.MustRegister(BreakerState)
	prometheus.MustRegister(BreakerTransitions)
	prometheus.MustRegister(BreakerRequests)
	breakerMetricsRegistered = true
}
