package router

import (
	"context"

	"community_chat_service/internal/chat/api/handlers"
	"community_chat_service/internal/chat/app"
	"community_chat_service/pkg/metrics"
	"community_chat_service/pkg/middlewares"
	"community_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps everything the chat routes need
type Deps struct {
	Chat        *handlers.ChatHandler
	Health      *handlers.HealthHandler
	Websocket   *app.ChatWebsocketHandler
	Tokens      token.Parser
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	RateLimiter *middlewares.RateLimiter // nil disables rate limiting
}

// RegisterRoutes 注册聊天相关的路由
// @title Community Chat Service API
// @version 1.0
// @description Chat threads, messages and unread counts
// @host localhost:5000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func RegisterRoutes(r *fiber.App, d Deps) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Post("/debug", handlers.DebugLogFlag)
	r.Get("/api/health", d.Health.Health)
	r.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	// socket 的身分由第一個 auth frame 決定, 不走 JWTMiddleware
	r.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		d.Websocket.HandleConnection(context.Background(), c)
	}))

	api := r.Group("/api/chat", middlewares.JWTMiddleware(d.Tokens))
	if d.RateLimiter != nil {
		api.Use(d.RateLimiter.Handler(d.Metrics))
	}

	api.Get("/threads", d.Chat.ListThreads)
	api.Post("/threads", d.Chat.CreateThread)
	api.Get("/unread-counts", d.Chat.UnreadCounts)
	api.Post("/threads/:id/join", d.Chat.JoinThread)
	api.Post("/threads/:id/leave", d.Chat.LeaveThread)
	api.Get("/threads/:id/messages", d.Chat.ListMessages)
	api.Post("/threads/:id/messages", d.Chat.SendMessage)
	api.Post("/threads/:id/messages/read", d.Chat.MarkMessagesRead)
	api.Post("/threads/:id/mark-read", d.Chat.MarkRead)
	api.Delete("/messages/:id", d.Chat.DeleteMessage)
	api.Get("/private/:otherUserId", d.Chat.PrivateThread)
	api.Post("/events/:id/thread", d.Chat.EventThread)
}
