// Package kafka delivers outbox messages to Kafka.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"procura/internal/infrastructure/storage/postgres"
	"procura/pkg/logger"
)

// Record header keys.
const (
	HeaderEventType     = "event-type"
	HeaderEventID       = "event-id"
	HeaderAggregateType = "aggregate-type"
	HeaderTimestamp     = "timestamp"
)

var _ postgres.OutboxHandler = (*Producer)(nil)

// NewSaramaConfig returns an idempotent, fully acknowledged producer config.
func NewSaramaConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Version = sarama.V2_8_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

// Producer publishes outbox messages to a single topic.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer connects to brokers.
func NewProducer(brokers []string, topic, clientID string) (*Producer, error) {
	sp, err := sarama.NewSyncProducer(brokers, NewSaramaConfig(clientID))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewProducerFrom(sp, topic), nil
}

// NewProducerFrom wraps an existing sync producer.
func NewProducerFrom(sp sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: sp, topic: topic}
}

// Handle sends one message. Retries are left to the outbox relay.
func (p *Producer) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(Message(p.topic, msg))
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", msg.EventType, p.topic, err)
	}

	logger.Debug(ctx, "event published",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"event_type", msg.EventType,
		"message_id", msg.ID)
	return nil
}

// Close closes the underlying producer.
func (p *Producer) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// Message builds the Kafka record for an outbox message, keyed by aggregate so
// all changes of one item land in the same partition.
func Message(topic string, msg *postgres.OutboxMessage) *sarama.ProducerMessage {
	return &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(msg.AggregateID.String()),
		Value: sarama.ByteEncoder(msg.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderEventType), Value: []byte(msg.EventType)},
			{Key: []byte(HeaderEventID), Value: []byte(msg.ID.String())},
			{Key: []byte(HeaderAggregateType), Value: []byte(msg.AggregateType)},
			{Key: []byte(HeaderTimestamp), Value: []byte(msg.CreatedAt.UTC().Format(time.RFC3339))},
		},
	}
}
