// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "prototypehub"

// Outcome label values.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

var (
	githubRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "github_requests_total",
		Help:      "GitHub API calls made, by operation and outcome.",
	}, []string{"operation", "outcome"})

	diffFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "diff_fallbacks_total",
		Help:      "Pull request diffs replaced by an empty string after a failed fetch.",
	})

	aggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Time spent assembling the code review history.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"outcome"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Inbound HTTP request latency by route and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
)

// ObserveGitHubRequest counts one GitHub API call.
func ObserveGitHubRequest(operation, outcome string) {
	githubRequests.WithLabelValues(operation, outcome).Inc()
}

// IncDiffFallback counts one diff replaced by the empty string.
func IncDiffFallback() {
	diffFallbacks.Inc()
}

// ObserveAggregation records how long one aggregation run took.
func ObserveAggregation(outcome string, d time.Duration) {
	aggregationDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveHTTPRequest records the latency of one inbound request.
func ObserveHTTPRequest(route string, status int, d time.Duration) {
	httpRequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}
