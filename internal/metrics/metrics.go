package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks payloads received on the relay webhook endpoint.
	WebhookPayloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_webhook_payloads_total",
			Help: "Total number of payloads received on the webhook endpoint.",
		},
		[]string{"result"}, // result = "stored" | "rejected"
	)

	// Tracks downstream forward attempts by outcome.
	ForwardAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_forward_attempts_total",
			Help: "Total number of downstream forward attempts.",
		},
		[]string{"result"}, // result = "ok" | "error"
	)

	// Measures duration of downstream forwards.
	ForwardDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_forward_duration_seconds",
			Help:    "Duration of downstream forward requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"target"},
	)

	// Tracks quote rows processed by outcome.
	QuoteRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_rows_total",
			Help: "Total number of quote CSV rows processed.",
		},
		[]string{"result"}, // result = "processed" | "skipped" | "typo"
	)

	// Tracks outbound calls to the accounting automation gateway.
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounting_gateway_requests_total",
			Help: "Total number of accounting gateway requests made.",
		},
		[]string{"operation", "status"},
	)

	// Measures duration of accounting gateway calls.
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accounting_gateway_request_duration_seconds",
			Help:    "Duration of accounting gateway requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"operation"},
	)

	// Tracks NATS messages published by subject and result.
	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages published.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nats_message_latency_seconds",
			Help:    "Time taken to publish NATS messages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)

	// Tracks cache hits and misses for credentials / customer lists.
	CacheAccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_cache_access_total",
			Help: "Number of cache hits/misses in the credential and customer caches.",
		},
		[]string{"cache", "result"}, // hit | miss
	)

	// Tracks total errors (aggregated).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_errors_total",
			Help: "Count of service-level errors by component.",
		},
		[]string{"component", "reason"},
	)
)

// ObserveDuration records the time taken for a function and updates the given histogram.
func ObserveDuration(v interface{}, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	default:
		// silently ignore counters; they're not meant for duration tracking
	}
}

func IncWebhookPayload(result string) {
	WebhookPayloadsTotal.WithLabelValues(result).Inc()
}

func IncForward(result string) {
	ForwardAttemptsTotal.WithLabelValues(result).Inc()
}

func IncQuoteRow(result string) {
	QuoteRowsTotal.WithLabelValues(result).Inc()
}

func IncGatewayRequest(operation, status string) {
	GatewayRequestsTotal.WithLabelValues(operation, status).Inc()
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncCacheAccess(cache, result string) {
	CacheAccessTotal.WithLabelValues(cache, result).Inc()
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}
