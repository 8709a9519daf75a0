// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worklane_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// ActiveWebSockets is the gauge of open WebSocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worklane_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// ChatMessagesRelayed counts chat messages relayed to live subscribers.
	ChatMessagesRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worklane_chat_messages_relayed_total",
		Help: "Total chat messages relayed through the pub/sub channel",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped because a client buffer
	// was full or closed.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worklane_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// TokensIssued counts session tokens issued by flow (signup/login).
	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worklane_tokens_issued_total",
		Help: "Total session tokens issued",
	}, []string{"flow"})
)
