package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// WebSocket metrics
	WebSocketConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of active cart stream connections",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of cart snapshots sent via WebSocket",
		},
	)

	// Cart metrics
	CartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_mutations_total",
			Help: "Total number of local cart mutations",
		},
		[]string{"operation"},
	)

	CartPersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cart_persist_duration_seconds",
			Help:    "Durable cart write latency in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// FailuresTotal counts failures recovered locally, by kind and operation
	FailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_failures_total",
			Help: "Total number of swallowed failures",
		},
		[]string{"kind", "op"},
	)

	ReconcileOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_reconcile_outcomes_total",
			Help: "Cart reconciliation results by outcome",
		},
		[]string{"outcome"},
	)

	// Remote API metrics
	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_request_duration_seconds",
			Help:    "Remote API call latency in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "status"},
	)

	RemoteBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "remote_circuit_breaker_state",
			Help: "Remote API circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Storefront events handed to the broker",
		},
		[]string{"type", "status"},
	)
)
