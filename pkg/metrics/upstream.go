package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records marketplace API call and cache outcomes.
type UpstreamMetrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
}

// NewUpstreamMetrics registers the upstream metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Marketplace API requests by endpoint and status class.",
	}, []string{"endpoint", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of marketplace API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_cache_hits_total",
		Help: "Cache-aside hits by endpoint.",
	}, []string{"endpoint"})
	cacheMisses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_cache_misses_total",
		Help: "Cache-aside misses by endpoint.",
	}, []string{"endpoint"})
	reg.MustRegister(requests, duration, cacheHits, cacheMisses)
	return &UpstreamMetrics{
		requests:    requests,
		duration:    duration,
		cacheHits:   cacheHits,
		cacheMisses: cacheMisses,
	}
}

// ObserveRequest records one upstream call.
func (m *UpstreamMetrics) ObserveRequest(endpoint, status string, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	m.requests.WithLabelValues(endpoint, normalizeLabel(status)).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// IncCacheHit increments the hit counter for the named endpoint.
func (m *UpstreamMetrics) IncCacheHit(endpoint string) {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues(normalizeLabel(endpoint)).Inc()
}

// IncCacheMiss increments the miss counter for the named endpoint.
func (m *UpstreamMetrics) IncCacheMiss(endpoint string) {
	if m == nil || m.cacheMisses == nil {
		return
	}
	m.cacheMisses.WithLabelValues(normalizeLabel(endpoint)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
