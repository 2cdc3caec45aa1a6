package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura/internal/core/id"
	"procura/internal/infrastructure/storage/postgres"
)

func outboxMessage() *postgres.OutboxMessage {
	return &postgres.OutboxMessage{
		ID:            id.New(),
		AggregateType: "Item",
		AggregateID:   id.New(),
		EventType:     "ItemStockChanged",
		Payload:       []byte(`{"delta":5}`),
		CreatedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestMessage(t *testing.T) {
	msg := outboxMessage()

	pm := Message("procura.stock", msg)

	assert.Equal(t, "procura.stock", pm.Topic)
	key, err := pm.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, msg.AggregateID.String(), string(key))

	headers := map[string]string{}
	for _, h := range pm.Headers {
		headers[string(h.Key)] = string(h.Value)
	}
	assert.Equal(t, "ItemStockChanged", headers[HeaderEventType])
	assert.Equal(t, msg.ID.String(), headers[HeaderEventID])
	assert.Equal(t, "2026-03-01T10:00:00Z", headers[HeaderTimestamp])
}

func TestProducer_Handle(t *testing.T) {
	sp := mocks.NewSyncProducer(t, NewSaramaConfig("test"))
	defer func() { require.NoError(t, sp.Close()) }()

	msg := outboxMessage()
	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(pm *sarama.ProducerMessage) error {
		value, err := pm.Value.Encode()
		if err != nil {
			return err
		}
		if string(value) != `{"delta":5}` {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewProducerFrom(sp, "procura.stock")
	assert.NoError(t, p.Handle(context.Background(), msg))
}

func TestProducer_HandleFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, NewSaramaConfig("test"))
	defer func() { require.NoError(t, sp.Close()) }()

	sp.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	p := NewProducerFrom(sp, "procura.stock")
	err := p.Handle(context.Background(), outboxMessage())

	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
}

func TestProducer_HandleCanceled(t *testing.T) {
	sp := mocks.NewSyncProducer(t, NewSaramaConfig("test"))
	defer func() { require.NoError(t, sp.Close()) }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewProducerFrom(sp, "procura.stock").Handle(ctx, outboxMessage())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSaramaConfig_Valid(t *testing.T) {
	assert.NoError(t, NewSaramaConfig("procura-worker").Validate())
}
