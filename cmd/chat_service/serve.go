package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"community_chat_service/internal/chat/api/handlers"
	"community_chat_service/internal/chat/router"
	"community_chat_service/pkg/config"
	"community_chat_service/pkg/logger"
	"community_chat_service/pkg/middlewares"
	testtool "community_chat_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func runServe(ctx context.Context, debug bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Log.Sync()
	logger.Log.SetDebugMode(debug)

	svc, err := newServices(ctx, cfg)
	if err != nil {
		logger.Log.Error("chat service setup failed", zap.Error(err))
		return err
	}
	defer svc.Close(context.Background())

	if err := ensureGlobal(ctx, svc, cfg); err != nil {
		logger.Log.Error("global thread bootstrap failed", zap.Error(err))
		return err
	}

	testtool.StartPprof(os.Getenv("PPROF_ADDR"))

	r := fiber.New(fiber.Config{DisableStartupMessage: config.IsProduction()})
	r.Use(recover.New())

	file, err := os.OpenFile(filepath.Join(config.EnvConfig.ChatServiceLogPath, "access.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return fmt.Errorf("open access log: %w", err)
	}
	defer file.Close()
	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	var limiter *middlewares.RateLimiter
	if config.IsProduction() {
		limiter = middlewares.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		go limiter.Run(ctx)
	}

	router.RegisterRoutes(r, router.Deps{
		Chat:        handlers.NewChatHandler(svc.threadUC, svc.messageUC),
		Health:      handlers.NewHealthHandler(svc.mongo.Ping, svc.registry.Len),
		Websocket:   svc.websocket,
		Tokens:      svc.tokens,
		Metrics:     svc.metrics,
		Gatherer:    svc.gatherer,
		RateLimiter: limiter,
	})

	errCh := make(chan error, 1)
	go func() {
		port := ":" + cfg.Port
		logger.Log.Info("Chat Service listening", zap.String("port", port))
		errCh <- r.Listen(port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down chat service", zap.Int("clients", svc.registry.Len()))
	if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Log.Warn("fiber shutdown", zap.Error(err))
	}
	// 關閉仍在線的 socket, HandleConnection 的 defer 會清掉 registry
	for _, c := range svc.registry.Snapshot() {
		c.Close()
	}
	return nil
}
