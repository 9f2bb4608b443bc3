// Package metrics provides the Prometheus registry reference for the
// CrunchBase client. Collectors live in their own packages (client, cache)
// and register themselves through promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the client.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the registry the metrics handler reads from.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - crunchbase_requests_total{status} (Counter): Requests by HTTP status or "network_error"
//   - crunchbase_request_duration_seconds (Histogram): Request duration
//   - crunchbase_errors_total{class} (Counter): Errors by class (client, server, network, protocol)
//
// Cache Metrics (pkg/cache):
//   - crunchbase_cache_entries (Gauge): Entries in the response cache
//   - crunchbase_conditional_requests_total (Counter): Requests sent with validators
//   - crunchbase_304_responses_total (Counter): Revalidations answered with 304
//   - crunchbase_cache_errors_total{operation} (Counter): Snapshot save/load errors
//
// Example Prometheus Queries:
//
//   # Revalidation hit rate
//   rate(crunchbase_304_responses_total[5m]) / rate(crunchbase_conditional_requests_total[5m])
//
//   # Not found rate
//   rate(crunchbase_requests_total{status="404"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(crunchbase_request_duration_seconds_bucket[5m]))
