package app

import (
	"context"
	"errors"

	"community_chat_service/internal/chat/domain"
	"community_chat_service/internal/chat/repository"
	errprocess "community_chat_service/pkg/err"
	"community_chat_service/pkg/logger"
	"community_chat_service/pkg/metrics"

	"go.uber.org/zap"
)

const (
	// DefaultPageSize messages per page when limit is not given
	DefaultPageSize = 50
	// MaxPageSize upper bound of limit
	MaxPageSize = 100
)

// MessageUseCase append, page and soft delete messages
type MessageUseCase struct {
	stores      Stores
	members     MemberResolver
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	now         Clock
}

// NewMessageUseCase init message use case, m may be nil
func NewMessageUseCase(stores Stores, members MemberResolver, broadcaster Broadcaster, m *metrics.Metrics) *MessageUseCase {
	if stores.Activity == nil {
		stores.Activity = repository.NewNopActivityPublisher()
	}
	return &MessageUseCase{
		stores:      stores,
		members:     members,
		broadcaster: broadcaster,
		metrics:     m,
		now:         SystemClock,
	}
}

// ListMessages one page oldest → newest, deleted messages keep their slot with the placeholder.
// Advances the caller's read cursor.
func (uc *MessageUseCase) ListMessages(ctx context.Context, threadID, userID string, page, limit int) ([]domain.MessageView, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	thread, err := uc.accessibleThread(ctx, threadID, userID)
	if err != nil {
		return nil, err
	}

	messages, err := uc.stores.Messages.FindPage(ctx, threadID, page, limit)
	if err != nil {
		return nil, errprocess.Internal("find messages", err)
	}

	senders := newSenderCache(uc.members)
	views := make([]domain.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, domain.NewMessageView(m, senders.get(ctx, m.SenderID)))
	}

	if err := advanceCursor(ctx, uc.stores.Threads, thread, userID, uc.now()); err != nil {
		return nil, err
	}
	return views, nil
}

// SendMessage persist a text message, then notify every other connected member
func (uc *MessageUseCase) SendMessage(ctx context.Context, threadID, userID, content, replyTo string) (*domain.MessageView, error) {
	content, ok := domain.NormalizeContent(content)
	if !ok {
		if content == "" {
			return nil, errprocess.Validation("Message content is required")
		}
		return nil, errprocess.Validation("Message content must be at most 2000 characters")
	}

	if _, err := uc.accessibleThread(ctx, threadID, userID); err != nil {
		return nil, err
	}

	if replyTo != "" {
		target, err := uc.stores.Messages.FindByID(ctx, replyTo)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, errprocess.Internal("find reply target", err)
		}
		if target == nil || target.ThreadID != threadID {
			return nil, errprocess.Validation("Reply target not found in this thread")
		}
	}

	now := uc.now()
	msg := &domain.Message{
		ID:        domain.NewMessageID(),
		ThreadID:  threadID,
		SenderID:  userID,
		Content:   content,
		Kind:      domain.MessageText,
		ReplyTo:   replyTo,
		ReadBy:    []domain.ReadReceipt{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.stores.Messages.Insert(ctx, msg); err != nil {
		return nil, errprocess.Internal("insert message", err)
	}
	if err := uc.stores.Threads.RecordMessage(ctx, threadID, msg.ID, now); err != nil {
		logger.Log.Error("record thread activity failed", zap.String("threadID", threadID), zap.Error(err))
	}

	view := domain.NewMessageView(*msg, newSenderCache(uc.members).get(ctx, userID))
	delivered := uc.broadcaster.BroadcastToThread(threadID, view, userID)
	logger.Log.Debug("message broadcast", zap.String("threadID", threadID), zap.Int("delivered", delivered))

	if uc.metrics != nil {
		uc.metrics.MessagesSent.Inc()
	}
	uc.publish(ctx, domain.Activity{Type: domain.ActivityMessageCreated, ThreadID: threadID, MessageID: msg.ID, UserID: userID, At: now})
	return &view, nil
}

// DeleteMessage soft delete, sender or admin only. Deleting twice is a no-op.
func (uc *MessageUseCase) DeleteMessage(ctx context.Context, messageID, userID string) error {
	msg, err := uc.stores.Messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errprocess.NotFound("Message not found")
		}
		return errprocess.Internal("find message", err)
	}

	if msg.SenderID != userID {
		member, err := uc.members.Resolve(ctx, userID)
		if err != nil {
			return err
		}
		if !member.IsAdmin() {
			return errprocess.AccessDenied("Only the sender or an admin can delete this message")
		}
	}

	now := uc.now()
	changed, err := uc.stores.Messages.SoftDelete(ctx, messageID, now)
	if err != nil {
		return errprocess.Internal("delete message", err)
	}
	if !changed {
		return nil
	}

	uc.broadcaster.BroadcastThreadUpdate(domain.ThreadUpdate{
		ThreadID:   msg.ThreadID,
		UpdateType: domain.MessageDeleted,
		UserID:     userID,
		MessageID:  messageID,
	})
	uc.publish(ctx, domain.Activity{Type: domain.ActivityMessageDeleted, ThreadID: msg.ThreadID, MessageID: messageID, UserID: userID, At: now})
	return nil
}

// MarkMessagesRead add a read receipt for userID on each listed message of the thread
func (uc *MessageUseCase) MarkMessagesRead(ctx context.Context, threadID, userID string, messageIDs []string) (int64, error) {
	if _, err := uc.accessibleThread(ctx, threadID, userID); err != nil {
		return 0, err
	}
	n, err := uc.stores.Messages.MarkRead(ctx, threadID, userID, messageIDs, uc.now())
	if err != nil {
		return 0, errprocess.Internal("mark messages read", err)
	}
	return n, nil
}

func (uc *MessageUseCase) accessibleThread(ctx context.Context, threadID, userID string) (*domain.Thread, error) {
	thread, err := findThread(ctx, uc.stores.Threads, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasAccess(userID) {
		return nil, errprocess.AccessDenied("Access denied to this thread")
	}
	return thread, nil
}

func (uc *MessageUseCase) publish(ctx context.Context, activity domain.Activity) {
	if err := uc.stores.Activity.Publish(ctx, activity); err != nil {
		logger.Log.Warn("publish activity failed", zap.String("type", string(activity.Type)), zap.Error(err))
	}
}
