package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the chat service.
type Metrics struct {
	ConnectionsTotal    prometheus.Counter
	ActiveConnections   prometheus.Gauge
	AuthAttempts        *prometheus.CounterVec
	BroadcastDeliveries *prometheus.CounterVec
	MessagesSent        prometheus.Counter
	RateLimited         prometheus.Counter
	ReconnectAttempts   prometheus.Counter
}

// New creates all metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ConnectionsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "chat_ws_connections_total",
			Help: "Total websocket connections accepted",
		}),
		ActiveConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "chat_ws_authenticated_connections",
			Help: "Connections currently in the registry",
		}),
		AuthAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_ws_auth_attempts_total",
			Help: "Socket auth attempts by result",
		}, []string{"result"}),
		BroadcastDeliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_broadcast_deliveries_total",
			Help: "Broadcast pushes by event and outcome",
		}, []string{"event", "outcome"}),
		MessagesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Messages appended to threads",
		}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "chat_rate_limited_total",
			Help: "Requests rejected by the chat rate limiter",
		}),
		ReconnectAttempts: f.NewCounter(prometheus.CounterOpts{
			Name: "chat_client_reconnect_attempts_total",
			Help: "Reconnect attempts scheduled by the chat client",
		}),
	}
}

// NewUnregistered metrics on a private registry, for tests and tools
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
