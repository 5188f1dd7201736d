// Package metrics 汇总 Prometheus 指标，进程启动时注册到默认 Registry。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint, method and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidhub_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	ViewsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vidhub_views_recorded_total",
			Help: "Total view increments persisted.",
		},
	)

	LikeToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidhub_like_toggles_total",
			Help: "Like toggles, by result (liked, unliked, conflict).",
		},
		[]string{"result"},
	)

	CommentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vidhub_comments_created_total",
			Help: "Total comments created.",
		},
	)

	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidhub_search_requests_total",
			Help: "Search requests, by backend (elasticsearch, mongo) and effective sort.",
		},
		[]string{"backend", "sort"},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vidhub_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vidhub_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidhub_events_dropped_total",
			Help: "Engagement events dropped because a subscriber queue was full.",
		},
		[]string{"subscriber"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration,
		RequestsInFlight,
		ViewsRecorded,
		LikeToggles,
		CommentsCreated,
		SearchRequests,
		CacheHits,
		CacheMisses,
		EventsDropped,
	)
}

// Handler 返回 /metrics 的 http.Handler
func Handler() http.Handler {
	return promhttp.Handler()
}
