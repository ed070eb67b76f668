package app

import (
	"context"
	"time"

	"community_chat_service/internal/chat/domain"
	memberdomain "community_chat_service/internal/member/domain"
	errprocess "community_chat_service/pkg/err"
	"community_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// MemberResolver verified identity lookup, satisfied by the member directory
type MemberResolver interface {
	Resolve(ctx context.Context, memberID string) (*memberdomain.Member, error)
}

// Clock time source, millisecond precision to match the store
type Clock func() time.Time

// SystemClock UTC now truncated to milliseconds
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// SenderOf identity payload of a member
func SenderOf(m *memberdomain.Member) domain.Sender {
	return domain.Sender{
		ID:             m.MemberID,
		Username:       m.Username,
		NameColor:      m.NameColor,
		ProfilePicture: m.ProfilePicture,
	}
}

// senderCache resolves each member at most once per request
type senderCache struct {
	resolver MemberResolver
	seen     map[string]domain.Sender
}

func newSenderCache(resolver MemberResolver) *senderCache {
	return &senderCache{resolver: resolver, seen: map[string]domain.Sender{}}
}

func (s *senderCache) get(ctx context.Context, memberID string) domain.Sender {
	if sender, ok := s.seen[memberID]; ok {
		return sender
	}
	sender := domain.Sender{ID: memberID, Username: domain.UnknownUsername}
	m, err := s.resolver.Resolve(ctx, memberID)
	switch {
	case err == nil:
		sender = SenderOf(m)
	case !errprocess.Is(err, errprocess.KindNotFound):
		logger.Log.Warn("resolve sender failed", zap.String("memberID", memberID), zap.Error(err))
	}
	s.seen[memberID] = sender
	return sender
}
