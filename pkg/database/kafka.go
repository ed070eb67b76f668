package database

import (
	"context"
	"fmt"
	"time"

	"community_chat_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewKafkaWriterWithRetry 確認 broker 可連線後建立 Writer
func NewKafkaWriterWithRetry(ctx context.Context, k KafkaConnection) (*kafka.Writer, error) {
	if len(k.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}

	var err error
	for attempt := 0; attempt <= k.RetryCount; attempt++ {
		var conn *kafka.Conn
		dialer := &kafka.Dialer{Timeout: 5 * time.Second}
		conn, err = dialer.DialContext(ctx, "tcp", k.Brokers[0])
		if err == nil {
			_ = conn.Close()
			return &kafka.Writer{
				Addr:         kafka.TCP(k.Brokers...),
				Topic:        k.Topic,
				Balancer:     &kafka.Hash{},
				RequiredAcks: kafka.RequireOne,
				Async:        true,
				Completion: func(messages []kafka.Message, err error) {
					if err != nil {
						logger.Log.Warn("kafka async write failed", zap.Int("messages", len(messages)), zap.Error(err))
					}
				},
			}, nil
		}

		logger.Log.Warn("kafka dial failed, retrying...", zap.Int("attempt", attempt+1), zap.Error(err))
		if attempt < k.RetryCount {
			time.Sleep(k.RetryInterval * time.Second)
		}
	}

	return nil, fmt.Errorf("kafka: unable to reach brokers after %d attempts: %w", k.RetryCount+1, err)
}
