package app

import (
	"encoding/json"

	"community_chat_service/internal/chat/domain"
	"community_chat_service/pkg/logger"
	"community_chat_service/pkg/metrics"

	"go.uber.org/zap"
)

// Broadcaster best effort push to registered connections, no retry and no persistence.
// Frames are queued on each connection's write pump, a slow peer never holds up the loop.
type Broadcaster interface {
	// BroadcastToThread push new_message to every registered connection except those of excludeUserID
	BroadcastToThread(threadID string, msg domain.MessageView, excludeUserID string) int
	// BroadcastThreadUpdate push thread_update to every registered connection
	BroadcastThreadUpdate(update domain.ThreadUpdate) int
}

type broadcaster struct {
	registry *Registry
	metrics  *metrics.Metrics
}

// NewBroadcaster create a Broadcaster over registry
func NewBroadcaster(registry *Registry, m *metrics.Metrics) Broadcaster {
	return &broadcaster{registry: registry, metrics: m}
}

func (b *broadcaster) BroadcastToThread(threadID string, msg domain.MessageView, excludeUserID string) int {
	return b.fanOut(domain.EventNewMessage, domain.NewMessagePayload{ThreadID: threadID, Message: msg}, excludeUserID)
}

func (b *broadcaster) BroadcastThreadUpdate(update domain.ThreadUpdate) int {
	return b.fanOut(domain.EventThreadUpdate, update, "")
}

func (b *broadcaster) fanOut(event domain.Event, data interface{}, excludeUserID string) int {
	payload, err := json.Marshal(domain.Envelope{Event: event, Data: data})
	if err != nil {
		logger.Log.Error("broadcast marshal failed", zap.String("event", string(event)), zap.Error(err))
		return 0
	}

	delivered := 0
	b.registry.Each(func(c *Connection) bool {
		if c.State() != StateAuthenticated {
			b.record(event, "skipped")
			return true
		}
		if excludeUserID != "" && c.UserID() == excludeUserID {
			return true
		}
		if err := c.write(payload); err != nil {
			b.record(event, "failed")
			logger.Log.Warn("broadcast enqueue failed",
				zap.String("event", string(event)),
				zap.String("connID", c.ID),
				zap.String("userID", c.UserID()),
				zap.Error(err))
			return true
		}
		b.record(event, "delivered")
		delivered++
		return true
	})
	return delivered
}

func (b *broadcaster) record(event domain.Event, outcome string) {
	if b.metrics != nil {
		b.metrics.BroadcastDeliveries.WithLabelValues(string(event), outcome).Inc()
	}
}
