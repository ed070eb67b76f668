package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler liveness with store and socket stats
type HealthHandler struct {
	ping    func(ctx context.Context) error
	active  func() int
	started time.Time
}

// NewHealthHandler ping checks the document store, active counts registered sockets
func NewHealthHandler(ping func(ctx context.Context) error, active func() int) *HealthHandler {
	return &HealthHandler{ping: ping, active: active, started: time.Now()}
}

// Health service health
// @Summary Health check
// @Tags Shared
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	database := "connected"
	if err := h.ping(ctx); err != nil {
		database = "disconnected"
	}

	return c.JSON(fiber.Map{
		"status":            "OK",
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"database":          database,
		"activeConnections": h.active(),
		"uptime":            time.Since(h.started).Seconds(),
	})
}
