package repository

import (
	"context"
	"encoding/json"

	"community_chat_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// ActivityPublisher definition outbound chat activity stream
type ActivityPublisher interface {
	Publish(ctx context.Context, activity domain.Activity) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaActivityPublisher struct {
	writer messageWriter
}

// NewKafkaActivityPublisher publish activities keyed by thread id, so one thread stays on one partition
func NewKafkaActivityPublisher(writer *kafka.Writer) ActivityPublisher {
	return &kafkaActivityPublisher{writer: writer}
}

func (p *kafkaActivityPublisher) Publish(ctx context.Context, activity domain.Activity) error {
	value, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(activity.ThreadID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(activity.Type)},
		},
	})
}

func (p *kafkaActivityPublisher) Close() error {
	return p.writer.Close()
}

type nopActivityPublisher struct{}

// NewNopActivityPublisher publisher used when no broker is configured
func NewNopActivityPublisher() ActivityPublisher {
	return nopActivityPublisher{}
}

func (nopActivityPublisher) Publish(context.Context, domain.Activity) error { return nil }

func (nopActivityPublisher) Close() error { return nil }
