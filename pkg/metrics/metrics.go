// Package metrics exposes the Prometheus registry used by the voucher client.
// All metrics are defined in their respective packages (client, cache)
// to maintain modularity and avoid circular dependencies.
//
// This package provides the scrape handler and a reference for all
// available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the voucher client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back everything registered on Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the scrape handler for Gatherer.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Redemption Metrics (pkg/client):
//   - voucher_redeem_total{code} (Counter): Outcomes by status code, cache hits included
//   - voucher_upstream_requests_total{status} (Counter): Upstream calls by HTTP status or "network_error"
//   - voucher_upstream_duration_seconds (Histogram): Upstream call duration
//   - voucher_errors_total{kind} (Counter): Failures by kind (validation excluded)
//   - voucher_inflight_shared_total (Counter): Calls that joined an in-flight upstream request
//
// Cache Metrics (pkg/cache):
//   - voucher_cache_hits_total{layer} (Counter): Cache hits by layer (memory, redis)
//   - voucher_cache_misses_total{layer} (Counter): Cache misses, expired entries included
//   - voucher_cache_entries{layer} (Gauge): Entries held by the memory store
//   - voucher_cache_evictions_total{layer} (Counter): Expired entries removed by a sweep
//   - voucher_cache_errors_total{operation} (Counter): Cache operation errors
//
// HTTP Metrics (internal/server):
//   - voucher_http_requests_total{route, status} (Counter): Proxy requests served
//   - voucher_http_request_duration_seconds{route} (Histogram): Proxy request duration
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(voucher_cache_hits_total[5m])) /
//   (sum(rate(voucher_cache_hits_total[5m])) + sum(rate(voucher_cache_misses_total[5m])))
//
//   # Redemption Success Rate
//   sum(rate(voucher_redeem_total{code="SUCCESS"}[5m])) / sum(rate(voucher_redeem_total[5m]))
//
//   # Upstream Error Rate
//   rate(voucher_errors_total[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(voucher_upstream_duration_seconds_bucket[5m]))
