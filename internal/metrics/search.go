package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query builder and correction Prometheus metrics.
var (
	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crvs",
			Name:      "search_queries_built_total",
			Help:      "Total number of search queries built",
		},
		[]string{"kind", "event", "status"}, // kind: "advanced" / "quick"
	)

	SearchQueryClauses = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crvs",
			Name:      "search_query_clauses",
			Help:      "Number of leaf clauses per built query",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		},
		[]string{"kind"},
	)

	SearchNotAllowedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crvs",
			Name:      "search_not_allowed_total",
			Help:      "Advanced searches rejected by the search-allowed signal",
		},
		[]string{"event"},
	)

	ConfigFaultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crvs",
			Name:      "config_faults_total",
			Help:      "Event configuration faults detected at request time",
		},
		[]string{"event"},
	)

	CorrectionChangedFields = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crvs",
			Name:      "correction_changed_fields",
			Help:      "Number of changed declaration fields per correction diff",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		},
		[]string{"event"},
	)

	CorrectionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crvs",
			Name:      "correction_requests_total",
			Help:      "Total correction requests appended to documents",
		},
		[]string{"event", "status"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search and correction metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(SearchQueryClauses)
	prometheus.MustRegister(SearchNotAllowedTotal)
	prometheus.MustRegister(ConfigFaultsTotal)
	prometheus.MustRegister(CorrectionChangedFields)
	prometheus.MustRegister(CorrectionRequestsTotal)
	searchMetricsRegistered = true
}
