//go:build integration

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"community_chat_service/internal/member/domain"
	"community_chat_service/internal/member/repository"
	"community_chat_service/pkg/database"
	errprocess "community_chat_service/pkg/err"
	"community_chat_service/pkg/logger"
	testtool "community_chat_service/pkg/test_tool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	memberRepo   repository.MemberRepository
	memberCache  database.RedisRepository[domain.Member]
	integrationD Directory
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	ctx := context.Background()

	// **啟動 PostgreSQL**
	postgresContainer, postgresHost, postgresPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image: "postgres:16",
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start PostgreSQL container: %v", err)
	}

	// **啟動 Redis**
	redisContainer, redisAddr, err := testtool.StartRedis(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to start Redis container: %v", err)
	}

	pool, err := database.NewDatabaseConnection(ctx, database.Connection{
		ConnectStr:    fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", postgresHost, postgresPort),
		RetryCount:    5,
		RetryInterval: 1,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
	}

	rdb, err := database.NewRedisClient(ctx, redisAddr, "", nil, 0)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}

	memberRepo = repository.NewMemberRepository(pool)
	if err := memberRepo.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ Failed to create schema: %v", err)
	}
	memberCache = database.NewRedisRepository[domain.Member](rdb, CachePrefix)
	integrationD = NewDirectory(memberRepo, WithCache(memberCache, time.Minute))

	code := m.Run()

	pool.Close()
	_ = rdb.Close()
	_ = postgresContainer.Terminate(ctx)
	_ = redisContainer.Terminate(ctx)
	os.Exit(code)
}

func TestDirectory_ResolveAndCache(t *testing.T) {
	ctx := context.Background()

	member := &domain.Member{
		MemberID:  "550e8400-e29b-41d4-a716-446655440000",
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "hash",
		NameColor: "#ff0000",
	}
	require.NoError(t, memberRepo.CreateMember(ctx, member))
	assert.NotZero(t, member.ID)

	got, err := integrationD.Resolve(ctx, member.MemberID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, domain.RoleUser, got.Role)

	cached, err := memberCache.Get(ctx, member.MemberID)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", cached.NameColor)
	assert.Empty(t, cached.Password)
}

func TestDirectory_UnknownMember(t *testing.T) {
	_, err := integrationD.Resolve(context.Background(), "ghost")
	assert.True(t, errprocess.Is(err, errprocess.KindNotFound))
}

func TestDirectory_EnsureSystemMemberIsIdempotent(t *testing.T) {
	ctx := context.Background()

	first, err := integrationD.EnsureSystemMember(ctx, "")
	require.NoError(t, err)
	second, err := integrationD.EnsureSystemMember(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, first.MemberID, second.MemberID)
	assert.True(t, second.IsAdmin())
}
