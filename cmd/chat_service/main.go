package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "community_chat_service/cmd/chat_service/docs" // 引入生成的 Swagger 文档
	"community_chat_service/pkg/config"
	"community_chat_service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chat_service",
		Short: "Community chat threads, messages and realtime delivery",
	}

	var debug bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat REST and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, debug)
		},
	}
	serveCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	initGlobalCmd := &cobra.Command{
		Use:   "init-global",
		Short: "Create the global chat thread if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitGlobal(cmd.Context())
		},
	}

	rootCmd.AddCommand(serveCmd, initGlobalCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Chat, error) {
	cfg, err := config.ReadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)
	if err != nil {
		return cfg, err
	}
	if config.EnvConfig.ChatServicePort != "" {
		cfg.Port = config.EnvConfig.ChatServicePort
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath, logger.Rotation{
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	return cfg, nil
}

// runInitGlobal seed the global thread, idempotent
func runInitGlobal(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Log.Sync()

	svc, err := newServices(ctx, cfg)
	if err != nil {
		logger.Log.Error("init-global: setup failed", zap.Error(err))
		return err
	}
	defer svc.Close(ctx)

	return ensureGlobal(ctx, svc, cfg)
}

func ensureGlobal(ctx context.Context, svc *services, cfg config.Chat) error {
	creator, err := svc.directory.EnsureSystemMember(ctx, cfg.SystemPassword)
	if err != nil {
		return fmt.Errorf("ensure system member: %w", err)
	}

	thread, created, err := svc.threadUC.EnsureGlobal(ctx, creator.MemberID)
	if err != nil {
		return fmt.Errorf("ensure global thread: %w", err)
	}
	if created {
		logger.Log.Info("global chat thread created", zap.String("threadID", thread.ID), zap.String("creator", creator.Username))
	} else {
		logger.Log.Info("global chat thread already exists", zap.String("threadID", thread.ID))
	}
	return nil
}
