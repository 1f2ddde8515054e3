package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yatube_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yatube_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)

	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yatube_database_queries_total",
			Help: "Total number of database queries executed",
		},
		[]string{"query_type", "success"},
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yatube_database_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type"},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yatube_page_cache_hits_total",
			Help: "Total number of page cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yatube_page_cache_misses_total",
			Help: "Total number of page cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yatube_page_cache_operation_duration_seconds",
			Help:    "Duration of page cache operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	PostOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yatube_post_operations_total",
			Help: "Total number of post operations",
		},
		[]string{"operation", "success"},
	)

	CommentOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yatube_comment_operations_total",
			Help: "Total number of comment operations",
		},
		[]string{"operation", "success"},
	)

	FollowOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yatube_follow_operations_total",
			Help: "Total number of follow operations",
		},
		[]string{"operation", "success"},
	)

	ServiceHealth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yatube_service_health",
			Help: "Service health status (1 = healthy, 0 = unhealthy)",
		},
	)
)
