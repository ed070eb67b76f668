package main

import (
	"context"
	"fmt"
	"time"

	"community_chat_service/internal/chat/app"
	"community_chat_service/internal/chat/repository"
	memberapp "community_chat_service/internal/member/app"
	memberdomain "community_chat_service/internal/member/domain"
	memberrepo "community_chat_service/internal/member/repository"
	"community_chat_service/pkg/config"
	"community_chat_service/pkg/database"
	"community_chat_service/pkg/logger"
	"community_chat_service/pkg/metrics"
	"community_chat_service/pkg/token"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// services everything wired from one config
type services struct {
	mongo    *database.MongoDB
	pg       *pgxpool.Pool
	redis    *redis.Client
	activity repository.ActivityPublisher

	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	tokens   *token.Manager

	directory memberapp.Directory
	registry  *app.Registry
	threadUC  *app.ThreadUseCase
	messageUC *app.MessageUseCase
	websocket *app.ChatWebsocketHandler
}

func newServices(ctx context.Context, cfg config.Chat) (_ *services, err error) {
	svc := &services{}
	defer func() {
		if err != nil {
			svc.Close(context.Background())
		}
	}()

	// 1. Mongo (threads / messages)
	uri := cfg.MongoURI()
	svc.mongo, err = database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    uri,
		RetryCount:    cfg.MongoSQL.RetryCount,
		RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval),
	}, cfg.MongoSQL.Database)
	if err != nil {
		return nil, fmt.Errorf("connect mongo [%s:%d]: %w", cfg.MongoSQL.Host, cfg.MongoSQL.Port, err)
	}
	threads := repository.NewMongoThreadRepository(svc.mongo.Database)
	messages := repository.NewMongoMessageRepository(svc.mongo.Database)
	if err = threads.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("thread indexes: %w", err)
	}
	if err = messages.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("message indexes: %w", err)
	}

	// 2. PostgreSQL: member directory (pgx) + events (gorm)
	pgConn := database.Connection{
		ConnectStr:    cfg.PostgresDSN(),
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	}
	svc.pg, err = database.NewDatabaseConnection(ctx, pgConn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	members := memberrepo.NewMemberRepository(svc.pg)
	if err = members.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("member schema: %w", err)
	}

	gormDB, err := database.NewPGConnection(pgConn)
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	events := repository.NewEventRepository(gormDB)
	if err = events.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("event schema: %w", err)
	}

	// 3. 選用元件: redis cache, minio avatar, kafka activity
	var dirOpts []memberapp.DirectoryOption
	masterName, sentinels := config.GetRedisSetting()
	if cfg.Redis.Addr != "" || len(sentinels) > 0 {
		svc.redis, err = database.NewRedisClient(ctx, cfg.Redis.Addr, masterName, sentinels, cfg.Redis.RedisDB)
		if err != nil {
			return nil, err
		}
		cache := database.NewRedisRepository[memberdomain.Member](svc.redis, memberapp.CachePrefix)
		dirOpts = append(dirOpts, memberapp.WithCache(cache, cfg.Redis.CacheTTL))
	} else {
		logger.Log.Info("redis not configured, member cache disabled")
	}

	if cfg.MinIO.Enabled {
		minioClient, err := database.NewMinIOConnection(ctx, database.MinIOConnection{
			Endpoint:      fmt.Sprintf("%s:%d", cfg.MinIO.Host, cfg.MinIO.Port),
			User:          cfg.MinIO.User,
			Password:      cfg.MinIO.Password,
			BucketName:    cfg.MinIO.BucketName,
			UseSSL:        cfg.MinIO.UseSSL,
			RetryCount:    cfg.MinIO.RetryCount,
			RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
		})
		if err != nil {
			return nil, fmt.Errorf("connect minio: %w", err)
		}
		dirOpts = append(dirOpts, memberapp.WithAvatarSigner(minioClient, cfg.MinIO.PresignExpiry))
	}

	svc.activity = repository.NewNopActivityPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		writer, err := database.NewKafkaWriterWithRetry(ctx, database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    3,
			RetryInterval: 2,
		})
		if err != nil {
			// activity stream 不影響聊天本身
			logger.Log.Warn("kafka unavailable, activity stream disabled", zap.Error(err))
		} else {
			svc.activity = repository.NewKafkaActivityPublisher(writer)
		}
	}

	// 4. chat core
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	svc.gatherer = reg
	svc.metrics = metrics.New(reg)
	svc.tokens = token.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, 0)

	svc.directory = memberapp.NewDirectory(members, dirOpts...)
	svc.registry = app.NewRegistry(svc.metrics)
	broadcaster := app.NewBroadcaster(svc.registry, svc.metrics)
	stores := app.Stores{
		Threads:  threads,
		Messages: messages,
		Events:   events,
		Activity: svc.activity,
	}
	svc.threadUC = app.NewThreadUseCase(stores, svc.directory, broadcaster)
	svc.messageUC = app.NewMessageUseCase(stores, svc.directory, broadcaster, svc.metrics)
	svc.websocket = app.NewChatWebsocketHandler(svc.registry, svc.tokens, svc.directory, svc.metrics, app.WebsocketSettings{
		PingInterval:   cfg.Websocket.PingInterval,
		WriteTimeout:   cfg.Websocket.WriteTimeout,
		MaxMessageSize: cfg.Websocket.MaxMessageSize,
	})
	return svc, nil
}

// Close release every connection that was opened
func (s *services) Close(ctx context.Context) {
	if s.activity != nil {
		if err := s.activity.Close(); err != nil {
			logger.Log.Warn("close activity publisher", zap.Error(err))
		}
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.pg != nil {
		s.pg.Close()
	}
	if s.mongo != nil {
		if err := s.mongo.Close(ctx); err != nil {
			logger.Log.Warn("close mongo", zap.Error(err))
		}
	}
}
