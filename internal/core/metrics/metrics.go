package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "postnet"

var registry = prometheus.NewRegistry()

var (
	// RateDecisions counts rewritten rates by kind and whether they were kept.
	RateDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_decisions_total",
			Help:      "Shipping rates processed by the rate rewriter",
		},
		[]string{"kind", "outcome"},
	)

	// ClassifierLookups counts region classifications by outcome (main, regional, error, skipped).
	ClassifierLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_lookups_total",
			Help:      "Postcode main-metro classification lookups",
		},
		[]string{"outcome"},
	)

	// StoreDirectoryRequests counts store directory calls by operation and outcome.
	StoreDirectoryRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_directory_requests_total",
			Help:      "Store directory requests",
		},
		[]string{"operation", "outcome"},
	)

	// Dispatches counts order dispatch attempts by outcome.
	Dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_dispatches_total",
			Help:      "Order dispatch attempts to the courier API",
		},
		[]string{"outcome"},
	)

	// DispatchDuration observes courier API latency.
	DispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_dispatch_duration_seconds",
			Help:      "Courier order API call duration",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 45},
		},
	)

	// FeeImports counts CSV fee imports by outcome.
	FeeImports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fee_imports_total",
			Help:      "Product fee CSV imports",
		},
		[]string{"outcome"},
	)
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RateDecisions,
		ClassifierLookups,
		StoreDirectoryRequests,
		Dispatches,
		DispatchDuration,
		FeeImports,
	)
}

// Handler returns the Prometheus scrape handler for the service registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
