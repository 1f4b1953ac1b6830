// Package metrics holds the Prometheus collectors shared by the query facade
// and the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcomes used as the outcome label of QueriesTotal.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeTooLarge = "too_large"
	OutcomeNotFound = "not_found"
	OutcomeInternal = "internal"
)

var (
	// RequestTotal counts HTTP requests by method, route pattern and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// QueriesTotal counts evaluated queries by record kind and outcome.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_queries_total",
			Help: "Total number of evaluated queries",
		},
		[]string{"kind", "outcome"},
	)
	// QueryDuration is the time spent compiling and evaluating a query.
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_query_duration_seconds",
			Help:    "Query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	// QueryRows is the number of rows returned by successful queries.
	QueryRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_query_result_rows",
			Help:    "Rows returned per successful query",
			Buckets: []float64{0, 1, 10, 100, 1000, 5000},
		},
	)
	// DatasetOperationsTotal counts catalog operations (add, remove, list).
	DatasetOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_dataset_operations_total",
			Help: "Total number of dataset catalog operations",
		},
		[]string{"operation", "status"},
	)
)

// Status returns the status label for an operation result.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
