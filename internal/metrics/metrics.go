// Package metrics exposes the process's Prometheus instrumentation:
// HTTP surface metrics plus the query-engine-specific counters and
// histograms used to observe index, single-query, batch-query, cache,
// and audit-log behavior.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uask_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uask_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Single-query resolution.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uask_query_duration_seconds",
			Help:    "Duration of single top-k query resolution",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"status"}, // ok, invalid
	)

	QueryResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uask_query_results_returned",
			Help:    "Number of ranked results returned per query",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	QueryCandidatesTotal = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uask_query_candidates_total",
			Help:    "Number of candidates considered before ranking, by resolution kind",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"kind"}, // single, batch
	)

	// Batch query resolution.
	BatchQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uask_batch_query_duration_seconds",
			Help:    "Duration of a ProcessBatch call",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	BatchGroupSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uask_batch_group_size",
			Help:    "Number of queries resolved together per spatial/keyword group",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	BatchGroupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uask_batch_groups_total",
			Help: "Total number of spatial/keyword groups formed across all batches",
		},
	)

	// WebSocket query streaming.
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uask_websocket_connections_active",
			Help: "Number of active query-streaming WebSocket connections",
		},
	)

	WebSocketMessagesOut = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uask_websocket_messages_out_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"type"},
	)

	// Index.
	IndexObjectsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uask_index_objects_total",
			Help: "Total number of objects currently held in the spatial index",
		},
	)

	IndexInsertErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uask_index_insert_errors_total",
			Help: "Total number of rejected inserts (out-of-bounds locations)",
		},
	)

	IndexLeafOverflowTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uask_index_leaf_overflow_total",
			Help: "Cumulative number of inserts that overflowed a full quadtree leaf because the geometric floor blocked its split",
		},
	)

	IngestRowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uask_ingest_rows_skipped_total",
			Help: "Total number of CSV rows skipped during ingestion",
		},
		[]string{"reason"},
	)

	// Redis result cache.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uask_cache_hits_total",
			Help: "Total number of query result cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uask_cache_misses_total",
			Help: "Total number of query result cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uask_cache_operation_duration_seconds",
			Help:    "Duration of Redis cache operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
		[]string{"operation"}, // get, set
	)

	RedisConnectionStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uask_redis_connection_status",
			Help: "Redis connection status (1 = connected, 0 = disconnected)",
		},
	)

	// MySQL audit log.
	AuditWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uask_audit_writes_total",
			Help: "Total number of audit log writes, by status",
		},
		[]string{"status"}, // success, error, dropped
	)

	AuditWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uask_audit_write_duration_seconds",
			Help:    "Duration of audit log writes in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	MySQLConnectionStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uask_mysql_connection_status",
			Help: "MySQL connection status (1 = connected, 0 = disconnected)",
		},
	)

	// Application info.
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "uask_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "build_time"},
	)
)

// SetAppInfo records the running build's version metadata.
func SetAppInfo(version, commit, buildTime string) {
	AppInfo.WithLabelValues(version, commit, buildTime).Set(1)
}
