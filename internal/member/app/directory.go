package app

import (
	"context"
	"errors"
	"time"

	"community_chat_service/internal/member/domain"
	"community_chat_service/internal/member/repository"
	"community_chat_service/pkg/database"
	"community_chat_service/pkg/encrypt"
	errprocess "community_chat_service/pkg/err"
	"community_chat_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CachePrefix redis key prefix of cached members
const CachePrefix = "chat:member:"

// Directory resolves verified identities for the chat
type Directory interface {
	// Resolve cache → postgres → cache, with a presigned avatar url when available
	Resolve(ctx context.Context, memberID string) (*domain.Member, error)
	// EnsureSystemMember return an admin, creating the System member when there is none
	EnsureSystemMember(ctx context.Context, password string) (*domain.Member, error)
}

// AvatarSigner presign profile picture objects
type AvatarSigner interface {
	PresignGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

type directory struct {
	memberRepo    repository.MemberRepository
	cache         database.RedisRepository[domain.Member]
	cacheTTL      time.Duration
	signer        AvatarSigner
	presignExpiry time.Duration
}

// DirectoryOption optional collaborators
type DirectoryOption func(*directory)

// WithCache cache resolved members in redis for ttl
func WithCache(cache database.RedisRepository[domain.Member], ttl time.Duration) DirectoryOption {
	return func(d *directory) {
		d.cache = cache
		d.cacheTTL = ttl
	}
}

// WithAvatarSigner attach presigned profile picture urls
func WithAvatarSigner(signer AvatarSigner, expiry time.Duration) DirectoryOption {
	return func(d *directory) {
		d.signer = signer
		d.presignExpiry = expiry
	}
}

// NewDirectory 建立一個新的 Directory
func NewDirectory(memberRepo repository.MemberRepository, opts ...DirectoryOption) Directory {
	d := &directory{memberRepo: memberRepo, presignExpiry: time.Hour}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *directory) Resolve(ctx context.Context, memberID string) (*domain.Member, error) {
	member, err := d.lookup(ctx, memberID)
	if err != nil {
		return nil, err
	}
	d.attachAvatar(ctx, member)
	return member, nil
}

func (d *directory) lookup(ctx context.Context, memberID string) (*domain.Member, error) {
	if d.cache != nil {
		cached, err := d.cache.Get(ctx, memberID)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, database.ErrCacheMiss) {
			logger.Log.Warn("member cache read failed", zap.String("memberID", memberID), zap.Error(err))
		}
	}

	member, err := d.memberRepo.FindByMember(ctx, &domain.MemberQuery{MemberID: &memberID})
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, errprocess.NotFound("User not found")
		}
		return nil, errprocess.Internal("find member", err)
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, memberID, *member, d.cacheTTL); err != nil {
			logger.Log.Warn("member cache write failed", zap.String("memberID", memberID), zap.Error(err))
		}
	}
	return member, nil
}

func (d *directory) attachAvatar(ctx context.Context, member *domain.Member) {
	if d.signer == nil || member.AvatarKey == "" {
		return
	}
	u, err := d.signer.PresignGetURL(ctx, member.AvatarKey, d.presignExpiry)
	if err != nil {
		logger.Log.Warn("presign avatar failed", zap.String("memberID", member.MemberID), zap.Error(err))
		return
	}
	member.ProfilePicture = u
}

func (d *directory) EnsureSystemMember(ctx context.Context, password string) (*domain.Member, error) {
	role := domain.RoleAdmin
	admin, err := d.memberRepo.FindByMember(ctx, &domain.MemberQuery{Role: &role})
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, repository.ErrMemberNotFound) {
		return nil, errprocess.Internal("find admin", err)
	}

	if password == "" {
		password = uuid.New().String()
	} else if err := encrypt.ValidatePasswordStrength(password); err != nil {
		return nil, errprocess.Validation(err.Error())
	}
	pw, err := encrypt.HashPassword(password)
	if err != nil {
		return nil, errprocess.Internal("hash system password", err)
	}

	system := &domain.Member{
		MemberID: uuid.New().String(),
		Username: domain.SystemUsername,
		Email:    domain.SystemEmail,
		Password: pw,
		Role:     domain.RoleAdmin,
	}
	if err := d.memberRepo.CreateMember(ctx, system); err != nil {
		return nil, errprocess.Internal("create system member", err)
	}
	logger.Log.Info("system member created", zap.String("memberID", system.MemberID))
	return system, nil
}
