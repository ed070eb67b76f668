package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"community_chat_service/internal/chat/client"
	"community_chat_service/internal/chat/domain"
	"community_chat_service/pkg/config"
	"community_chat_service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		url         string
		tokenStr    string
		maxAttempts int
		debug       bool
	)

	rootCmd := &cobra.Command{
		Use:   "chat_client",
		Short: "Follow chat events over the websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenStr == "" {
				tokenStr = os.Getenv("CHAT_TOKEN")
			}
			if tokenStr == "" {
				return fmt.Errorf("a token is required (--token or CHAT_TOKEN)")
			}

			logger.Log = logger.Initialize("chat_client", config.EnvConfig.ChatServiceLogPath)
			logger.Log.SetDebugMode(debug)
			defer logger.Log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, url, tokenStr, maxAttempts)
		},
	}
	rootCmd.Flags().StringVar(&url, "url", "ws://localhost:5000/ws", "Chat websocket URL")
	rootCmd.Flags().StringVar(&tokenStr, "token", "", "Bearer token")
	rootCmd.Flags().IntVar(&maxAttempts, "max-attempts", client.DefaultMaxAttempts, "Reconnect attempts after an abnormal close")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, url, tokenStr string, maxAttempts int) error {
	m := client.NewManager(url, tokenStr, client.Handlers{
		OnMessage: func(threadID string, msg domain.MessageView) {
			fmt.Printf("[%s] %s: %s\n", threadID, msg.Sender.Username, msg.Content)
		},
		OnThreadUpdate: func(u domain.ThreadUpdate) {
			fmt.Printf("[%s] %s %s\n", u.ThreadID, u.UpdateType, u.Username)
		},
		OnConnectionChange: func(connected bool) {
			fmt.Printf("connected: %t\n", connected)
		},
	}, client.WithReconnect(maxAttempts, client.DefaultDelay))

	if err := m.Connect(ctx); err != nil {
		logger.Log.Warn("initial connect failed", zap.Error(err))
	}

	select {
	case <-ctx.Done():
		m.Disconnect()
	case <-m.Done():
	}
	<-m.Done()
	return nil
}
