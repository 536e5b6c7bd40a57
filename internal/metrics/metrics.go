// Package metrics holds the Prometheus instrumentation for the catalog
// service. Collectors register on the default registry; Handler exposes them
// at GET /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream fetch outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeBlankID     = "blank_id"
	OutcomeRateLimited = "rate_limited"
	OutcomeTransport   = "transport"
	OutcomeStatus      = "status"
	OutcomeTooLarge    = "too_large"
	OutcomeEmpty       = "empty"
	OutcomeDecode      = "decode"
)

// UpstreamRequests counts catalog API calls by platform and outcome.
var UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dramahub_upstream_requests_total",
	Help: "Upstream catalog API calls by platform and outcome.",
}, []string{"platform", "outcome"})

// UpstreamDuration tracks upstream call latency.
var UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dramahub_upstream_request_duration_seconds",
	Help:    "Upstream catalog API latency in seconds.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 4, 8},
}, []string{"platform"})

// StreamResolutions counts stream resolution results. strategy is "none"
// when no URL was found.
var StreamResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dramahub_stream_resolutions_total",
	Help: "Episode stream resolutions by platform and strategy.",
}, []string{"platform", "strategy"})

// SectionItems records how many items each assembled section carried.
var SectionItems = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dramahub_section_items",
	Help:    "Items per assembled catalog section.",
	Buckets: []float64{0, 1, 5, 10, 24, 50, 100},
}, []string{"section"})

// ProxyRequests counts media proxy requests by kind (image, stream, playlist)
// and result.
var ProxyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dramahub_proxy_requests_total",
	Help: "Media proxy requests by kind and result.",
}, []string{"kind", "result"})

// HTTPRequests counts HTTP requests by method, route template and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dramahub_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "path", "status"})

// HTTPDuration tracks HTTP request latency by route template.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dramahub_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path"})

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
