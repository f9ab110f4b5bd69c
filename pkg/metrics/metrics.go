package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API client metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lmstate_api_requests_total",
			Help: "Total number of portal API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lmstate_api_retries_total",
			Help: "Total number of retried portal API requests",
		},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lmstate_api_request_duration_seconds",
			Help:    "Portal API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Convergence metrics
	ConvergencesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lmstate_convergences_total",
			Help: "Total number of convergence runs by resource kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ConvergenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lmstate_convergence_duration_seconds",
			Help:    "Convergence run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	GroupsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lmstate_groups_created_total",
			Help: "Total number of device groups created during path resolution",
		},
	)
)

// Outcome label values for ConvergencesTotal.
const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

func init() {
	// Register all metrics
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRetriesTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(ConvergencesTotal)
	prometheus.MustRegister(ConvergenceDuration)
	prometheus.MustRegister(GroupsCreatedTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
