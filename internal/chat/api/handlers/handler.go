package handlers

import (
	"context"
	"fmt"
	"strconv"

	"community_chat_service/internal/chat/domain"
	errprocess "community_chat_service/pkg/err"
	"community_chat_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ThreadService thread operations used by the REST layer
type ThreadService interface {
	ListThreads(ctx context.Context, userID string) ([]domain.ThreadView, error)
	UnreadCounts(ctx context.Context, userID string) ([]domain.UnreadCount, error)
	CreateThread(ctx context.Context, userID, title, description string) (*domain.ThreadView, error)
	Join(ctx context.Context, threadID, userID string) error
	Leave(ctx context.Context, threadID, userID string) error
	GetOrCreatePrivate(ctx context.Context, userID, otherUserID string) (*domain.ThreadView, error)
	GetOrCreateEventThread(ctx context.Context, userID, eventID string) (*domain.Thread, bool, error)
	MarkRead(ctx context.Context, threadID, userID string) error
}

// MessageService message operations used by the REST layer
type MessageService interface {
	ListMessages(ctx context.Context, threadID, userID string, page, limit int) ([]domain.MessageView, error)
	SendMessage(ctx context.Context, threadID, userID, content, replyTo string) (*domain.MessageView, error)
	DeleteMessage(ctx context.Context, messageID, userID string) error
	MarkMessagesRead(ctx context.Context, threadID, userID string, messageIDs []string) (int64, error)
}

// respondError 統一錯誤輸出 {"message": ...}
func respondError(c *fiber.Ctx, err error, fallback string) error {
	status := errprocess.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		logger.Log.Error(fallback,
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(fiber.Map{"message": errprocess.PublicMessage(err, fallback)})
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging
// @Tags Shared
// @Param status query bool true "Debug status"
// @Success 200 {string} string "debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(c *fiber.Ctx) error {
	status, err := strconv.ParseBool(c.Query("status"))
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	logger.Log.Info("debug", zap.Bool("status", status))
	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("debug mode is : %t", status))
}
