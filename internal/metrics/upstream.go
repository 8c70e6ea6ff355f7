package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream Prometheus metrics: the record service and the completion provider.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datadesk",
			Name:      "upstream_requests_total",
			Help:      "Total number of requests to upstream services",
		},
		[]string{"upstream", "op", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "datadesk",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"upstream", "op"},
	)

	PredictorTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datadesk",
			Name:      "predictor_tokens_total",
			Help:      "Total completion tokens consumed by the predictor",
		},
		[]string{"model", "type"},
	)

	PredictorCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datadesk",
			Name:      "predictor_cache_total",
			Help:      "Predictor cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	PredictorBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "datadesk",
			Name:      "predictor_budget_tokens_remaining",
			Help:      "Remaining completion token budget",
		},
		[]string{"model", "period"}, // period: "daily" / "monthly"
	)
)

var upstreamMetricsRegistered bool

// RegisterUpstreamMetrics registers Prometheus upstream metrics. Must be called once from main.
func RegisterUpstreamMetrics() {
	if upstreamMetricsRegistered {
		return
	}
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(PredictorTokensTotal)
	prometheus.MustRegister(PredictorCacheTotal)
	prometheus.MustRegister(PredictorBudgetTokensRemaining)
	upstreamMetricsRegistered = true
}
