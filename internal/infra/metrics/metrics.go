// Package metrics provides Prometheus metrics for the notifications backend.
package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// HTTPRequestsTotal counts handled requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contexta",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contexta",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// OutboxRelayTotal counts relayed outbox events by outcome.
	OutboxRelayTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contexta",
			Name:      "outbox_relay_total",
			Help:      "Total number of outbox events relayed to the event stream",
		},
		[]string{"event_type", "status"},
	)

	// UnreadCacheTotal counts unread-count cache lookups.
	UnreadCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contexta",
			Name:      "unread_cache_lookups_total",
			Help:      "Unread count cache lookups by result",
		},
		[]string{"result"},
	)
)

func RecordHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func RecordOutboxRelay(eventType, status string) {
	OutboxRelayTotal.WithLabelValues(eventType, status).Inc()
}

func RecordUnreadCache(hit bool) {
	if hit {
		UnreadCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	UnreadCacheTotal.WithLabelValues("miss").Inc()
}

var (
	cursorOnce    sync.Once
	cursorCounter metric.Int64Counter
)

// RecordCursorDecode counts decoded pagination cursors through the global
// OTel meter, labelled by outcome ("valid" or "malformed").
func RecordCursorDecode(ctx context.Context, outcome string) {
	cursorOnce.Do(func() {
		counter, err := otel.Meter("contexta/pagination").Int64Counter(
			"contexta.pagination.cursor_decodes",
			metric.WithDescription("Pagination cursors decoded, by outcome"),
		)
		if err == nil {
			cursorCounter = counter
		}
	})
	if cursorCounter == nil {
		return
	}
	cursorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
