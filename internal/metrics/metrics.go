// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineverse_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cineverse_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cineverse_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Live content feeds
	LiveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cineverse_live_subscriptions",
			Help: "Current number of open content change subscriptions",
		},
	)

	WSConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cineverse_websocket_connections",
			Help: "Current number of open WebSocket connections",
		},
		[]string{"endpoint"},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineverse_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"endpoint"},
	)

	// AI flows
	AICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineverse_ai_calls_total",
			Help: "Total number of AI flow invocations",
		},
		[]string{"flow", "result"}, // result: "success", "failure", "rejected"
	)

	AICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cineverse_ai_call_duration_seconds",
			Help:    "AI model call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"flow"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cineverse_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Auth
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineverse_auth_attempts_total",
			Help: "Total number of sign-in attempts",
		},
		[]string{"method", "result"},
	)
)

// RecordAPIRequest records one finished request.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAICall records the outcome of one AI flow.
func RecordAICall(flow, result string, duration time.Duration) {
	AICalls.WithLabelValues(flow, result).Inc()
	if result != "rejected" {
		AICallDuration.WithLabelValues(flow).Observe(duration.Seconds())
	}
}

func RecordAuthAttempt(method string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	AuthAttempts.WithLabelValues(method, result).Inc()
}
