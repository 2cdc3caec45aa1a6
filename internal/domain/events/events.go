// Package events defines domain events queued through the transactional outbox.
package events

import (
	"context"
	"time"

	"procura/internal/core/id"
)

// Event types.
const (
	TypeItemStockChanged = "ItemStockChanged"
)

// AggregateItem is the aggregate type of stock events.
const AggregateItem = "Item"

// DomainEvent is an event to be delivered after the surrounding transaction commits.
type DomainEvent struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// Publisher queues events. Implementations must write within the caller's transaction.
type Publisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

// StockChanged is the payload of TypeItemStockChanged.
type StockChanged struct {
	ItemID     id.ID     `json:"item_id"`
	ItemKey    string    `json:"item_key"`
	ItemName   string    `json:"item_name"`
	Kind       string    `json:"kind"`
	Delta      int64     `json:"delta"`
	QtyAfter   int64     `json:"qty_after"`
	SourceType string    `json:"source_type"`
	SourceID   id.ID     `json:"source_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
