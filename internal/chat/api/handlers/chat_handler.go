package handlers

import (
	"community_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler 处理聊天相关的 HTTP 请求
type ChatHandler struct {
	threads  ThreadService
	messages MessageService
}

// NewChatHandler create the chat REST handler
func NewChatHandler(threads ThreadService, messages MessageService) *ChatHandler {
	return &ChatHandler{threads: threads, messages: messages}
}

// ListThreads threads visible to the caller
// @Summary List chat threads
// @Description Global, active user-created and joined threads with unread counts, pinned first
// @Tags Chat
// @Produce json
// @Success 200 {object} map[string][]domain.ThreadView
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /api/chat/threads [get]
func (h *ChatHandler) ListThreads(c *fiber.Ctx) error {
	threads, err := h.threads.ListThreads(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return respondError(c, err, "Failed to fetch threads")
	}
	return c.JSON(fiber.Map{"threads": threads})
}

// UnreadCounts unread count per visible thread
// @Summary Unread counts
// @Tags Chat
// @Produce json
// @Success 200 {object} map[string][]domain.UnreadCount
// @Security BearerAuth
// @Router /api/chat/unread-counts [get]
func (h *ChatHandler) UnreadCounts(c *fiber.Ctx) error {
	counts, err := h.threads.UnreadCounts(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return respondError(c, err, "Failed to fetch unread counts")
	}
	return c.JSON(fiber.Map{"unreadCounts": counts})
}

// CreateThread create a user thread
// @Summary Create thread
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body object true "{title, description}"
// @Success 201 {object} map[string]domain.ThreadView
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /api/chat/threads [post]
func (h *ChatHandler) CreateThread(c *fiber.Ctx) error {
	type request struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	thread, err := h.threads.CreateThread(c.UserContext(), middlewares.MemberID(c), req.Title, req.Description)
	if err != nil {
		return respondError(c, err, "Failed to create thread")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"thread": thread})
}

// JoinThread join a thread
// @Summary Join thread
// @Tags Chat
// @Param id path string true "Thread ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/chat/threads/{id}/join [post]
func (h *ChatHandler) JoinThread(c *fiber.Ctx) error {
	if err := h.threads.Join(c.UserContext(), c.Params("id"), middlewares.MemberID(c)); err != nil {
		return respondError(c, err, "Failed to join thread")
	}
	return c.JSON(fiber.Map{"message": "Successfully joined thread"})
}

// LeaveThread leave a thread, global threads cannot be left
// @Summary Leave thread
// @Tags Chat
// @Param id path string true "Thread ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /api/chat/threads/{id}/leave [post]
func (h *ChatHandler) LeaveThread(c *fiber.Ctx) error {
	if err := h.threads.Leave(c.UserContext(), c.Params("id"), middlewares.MemberID(c)); err != nil {
		return respondError(c, err, "Failed to leave thread")
	}
	return c.JSON(fiber.Map{"message": "Successfully left thread"})
}

// ListMessages page of messages, oldest first; advances the caller's read cursor
// @Summary List messages
// @Tags Chat
// @Produce json
// @Param id path string true "Thread ID"
// @Param page query int false "Page, 1-based"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} map[string][]domain.MessageView
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/chat/threads/{id}/messages [get]
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 0)

	messages, err := h.messages.ListMessages(c.UserContext(), c.Params("id"), middlewares.MemberID(c), page, limit)
	if err != nil {
		return respondError(c, err, "Failed to fetch messages")
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// SendMessage append a message and notify connected members
// @Summary Send message
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param request body object true "{content, replyTo}"
// @Success 201 {object} map[string]domain.MessageView
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /api/chat/threads/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	type request struct {
		Content string `json:"content"`
		ReplyTo string `json:"replyTo"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	msg, err := h.messages.SendMessage(c.UserContext(), c.Params("id"), middlewares.MemberID(c), req.Content, req.ReplyTo)
	if err != nil {
		return respondError(c, err, "Failed to send message")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

// MarkMessagesRead record read receipts on the given messages
// @Summary Mark messages read
// @Tags Chat
// @Accept json
// @Param id path string true "Thread ID"
// @Param request body object true "{messageIds}"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/chat/threads/{id}/messages/read [post]
func (h *ChatHandler) MarkMessagesRead(c *fiber.Ctx) error {
	type request struct {
		MessageIDs []string `json:"messageIds"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	updated, err := h.messages.MarkMessagesRead(c.UserContext(), c.Params("id"), middlewares.MemberID(c), req.MessageIDs)
	if err != nil {
		return respondError(c, err, "Failed to mark messages as read")
	}
	return c.JSON(fiber.Map{"message": "Messages marked as read", "updated": updated})
}

// DeleteMessage soft delete, sender or admin only
// @Summary Delete message
// @Tags Chat
// @Param id path string true "Message ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/chat/messages/{id} [delete]
func (h *ChatHandler) DeleteMessage(c *fiber.Ctx) error {
	if err := h.messages.DeleteMessage(c.UserContext(), c.Params("id"), middlewares.MemberID(c)); err != nil {
		return respondError(c, err, "Failed to delete message")
	}
	return c.JSON(fiber.Map{"message": "Message deleted"})
}

// PrivateThread get or create the private thread with another member
// @Summary Private thread
// @Tags Chat
// @Produce json
// @Param otherUserId path string true "Other member ID"
// @Success 200 {object} map[string]domain.ThreadView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/chat/private/{otherUserId} [get]
func (h *ChatHandler) PrivateThread(c *fiber.Ctx) error {
	thread, err := h.threads.GetOrCreatePrivate(c.UserContext(), middlewares.MemberID(c), c.Params("otherUserId"))
	if err != nil {
		return respondError(c, err, "Failed to get private thread")
	}
	return c.JSON(fiber.Map{"thread": thread})
}

// MarkRead advance the caller's read cursor
// @Summary Mark thread read
// @Tags Chat
// @Param id path string true "Thread ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /api/chat/threads/{id}/mark-read [post]
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.threads.MarkRead(c.UserContext(), c.Params("id"), middlewares.MemberID(c)); err != nil {
		return respondError(c, err, "Failed to mark as read")
	}
	return c.JSON(fiber.Map{"message": "Messages marked as read"})
}

// EventThread get or create an event's thread, organizer or admin only
// @Summary Event thread
// @Tags Chat
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} map[string]interface{} "already exists"
// @Success 201 {object} map[string]domain.Thread "created"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/chat/events/{id}/thread [post]
func (h *ChatHandler) EventThread(c *fiber.Ctx) error {
	thread, created, err := h.threads.GetOrCreateEventThread(c.UserContext(), middlewares.MemberID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to create event thread")
	}
	if !created {
		return c.JSON(fiber.Map{"thread": thread, "message": "Event thread already exists"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"thread": thread})
}
