package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datadesk",
			Name:      "searches_total",
			Help:      "Total catalog searches by record source",
		},
		[]string{"kind", "source"}, // source: remote / cache / empty
	)

	SuggestionsServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datadesk",
			Name:      "suggestions_served_total",
			Help:      "Suggestions served by provenance",
		},
		[]string{"source"},
	)

	HistoryResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "datadesk",
			Name:      "history_resets_total",
			Help:      "Times an unreadable search history was reset",
		},
	)

	StaleResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datadesk",
			Name:      "stale_responses_total",
			Help:      "Responses dropped because a newer request superseded them",
		},
		[]string{"op"}, // "fetch" / "suggest"
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "datadesk",
			Name:      "active_sessions",
			Help:      "Open view-state sessions",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SuggestionsServedTotal)
	prometheus.MustRegister(HistoryResetsTotal)
	prometheus.MustRegister(StaleResponsesTotal)
	prometheus.MustRegister(ActiveSessions)
	searchMetricsRegistered = true
}
