// Package observability provides tracing and metrics instrumentation.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FeedCacheHits counts home feed responses served from the Redis page cache.
	FeedCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_feed_cache_hits_total",
		Help: "Total number of home feed pages served from cache",
	})

	// FeedCacheMisses counts home feed requests that had to be assembled from the database.
	FeedCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_feed_cache_misses_total",
		Help: "Total number of home feed pages assembled from the database",
	})

	// EngagementToggles counts like/unlike/follow/unfollow operations by kind and outcome.
	EngagementToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_engagement_toggles_total",
		Help: "Total number of engagement toggle operations",
	}, []string{"kind", "outcome"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// ObserveQuery records the elapsed time since start for a database operation.
// Use with defer at the top of a repository method.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
