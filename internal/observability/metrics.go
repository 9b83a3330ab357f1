package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// EngagementIncrements counts engagement_rate bumps by the kind of child that caused them.
	EngagementIncrements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_engagement_increments_total",
		Help: "Total number of post engagement increments",
	}, []string{"source"})

	// ContentCreated counts posts, comments and replies created.
	ContentCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_content_created_total",
		Help: "Total number of content items created by kind",
	}, []string{"kind"})

	// ContentDeleted counts deleted content items by kind.
	ContentDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_content_deleted_total",
		Help: "Total number of content items deleted by kind",
	}, []string{"kind"})

	// MailDispatched counts verification emails handed to a transport.
	MailDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_mail_dispatched_total",
		Help: "Total number of emails dispatched by transport and outcome",
	}, []string{"transport", "outcome"})

	// TokensIssued counts JWT pairs issued by flow.
	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_tokens_issued_total",
		Help: "Total number of token pairs issued by flow",
	}, []string{"flow"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
