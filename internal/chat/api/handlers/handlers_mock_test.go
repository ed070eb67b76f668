package handlers

import (
	"context"

	"community_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

type MockThreadService struct {
	mock.Mock
}

func (m *MockThreadService) ListThreads(ctx context.Context, userID string) ([]domain.ThreadView, error) {
	args := m.Called(ctx, userID)
	views, _ := args.Get(0).([]domain.ThreadView)
	return views, args.Error(1)
}

func (m *MockThreadService) UnreadCounts(ctx context.Context, userID string) ([]domain.UnreadCount, error) {
	args := m.Called(ctx, userID)
	counts, _ := args.Get(0).([]domain.UnreadCount)
	return counts, args.Error(1)
}

func (m *MockThreadService) CreateThread(ctx context.Context, userID, title, description string) (*domain.ThreadView, error) {
	args := m.Called(ctx, userID, title, description)
	view, _ := args.Get(0).(*domain.ThreadView)
	return view, args.Error(1)
}

func (m *MockThreadService) Join(ctx context.Context, threadID, userID string) error {
	return m.Called(ctx, threadID, userID).Error(0)
}

func (m *MockThreadService) Leave(ctx context.Context, threadID, userID string) error {
	return m.Called(ctx, threadID, userID).Error(0)
}

func (m *MockThreadService) GetOrCreatePrivate(ctx context.Context, userID, otherUserID string) (*domain.ThreadView, error) {
	args := m.Called(ctx, userID, otherUserID)
	view, _ := args.Get(0).(*domain.ThreadView)
	return view, args.Error(1)
}

func (m *MockThreadService) GetOrCreateEventThread(ctx context.Context, userID, eventID string) (*domain.Thread, bool, error) {
	args := m.Called(ctx, userID, eventID)
	thread, _ := args.Get(0).(*domain.Thread)
	return thread, args.Bool(1), args.Error(2)
}

func (m *MockThreadService) MarkRead(ctx context.Context, threadID, userID string) error {
	return m.Called(ctx, threadID, userID).Error(0)
}

type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) ListMessages(ctx context.Context, threadID, userID string, page, limit int) ([]domain.MessageView, error) {
	args := m.Called(ctx, threadID, userID, page, limit)
	views, _ := args.Get(0).([]domain.MessageView)
	return views, args.Error(1)
}

func (m *MockMessageService) SendMessage(ctx context.Context, threadID, userID, content, replyTo string) (*domain.MessageView, error) {
	args := m.Called(ctx, threadID, userID, content, replyTo)
	view, _ := args.Get(0).(*domain.MessageView)
	return view, args.Error(1)
}

func (m *MockMessageService) DeleteMessage(ctx context.Context, messageID, userID string) error {
	return m.Called(ctx, messageID, userID).Error(0)
}

func (m *MockMessageService) MarkMessagesRead(ctx context.Context, threadID, userID string, messageIDs []string) (int64, error) {
	args := m.Called(ctx, threadID, userID, messageIDs)
	return args.Get(0).(int64), args.Error(1)
}
