package app

import (
	"context"

	"community_chat_service/internal/chat/domain"
	"community_chat_service/internal/chat/repository"
)

// UnreadCounter the single derivation of unread counts, used by the thread
// listing and the unread counts endpoint alike. Counts are never persisted.
type UnreadCounter struct {
	messages repository.MessageRepository
}

// NewUnreadCounter create an UnreadCounter
func NewUnreadCounter(messages repository.MessageRepository) *UnreadCounter {
	return &UnreadCounter{messages: messages}
}

// Count messages of thread created after userID's cursor, not sent by userID and not deleted
func (u *UnreadCounter) Count(ctx context.Context, thread *domain.Thread, userID string) (int64, error) {
	return u.messages.CountUnread(ctx, thread.ID, userID, thread.LastReadAt(userID))
}

// CountAll one entry per thread, in the order given
func (u *UnreadCounter) CountAll(ctx context.Context, threads []domain.Thread, userID string) ([]domain.UnreadCount, error) {
	out := make([]domain.UnreadCount, 0, len(threads))
	for i := range threads {
		n, err := u.Count(ctx, &threads[i], userID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.UnreadCount{
			ThreadID:    threads[i].ID,
			ThreadType:  threads[i].Kind,
			EventID:     threads[i].EventID,
			UnreadCount: n,
		})
	}
	return out, nil
}
