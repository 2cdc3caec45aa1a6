// Package messaging holds broker-independent outbox handlers.
package messaging

import (
	"context"

	"procura/internal/infrastructure/storage/postgres"
	"procura/pkg/logger"
)

var _ postgres.OutboxHandler = (*LogHandler)(nil)

// LogHandler writes outbox messages to the log. Used when no brokers are configured.
type LogHandler struct{}

// Handle implements postgres.OutboxHandler.
func (LogHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	logger.Info(ctx, "outbox event",
		"message_id", msg.ID,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"event_type", msg.EventType,
		"payload", string(msg.Payload))
	return nil
}
