// Package ledger applies signed stock deltas to the item catalog.
//
// All methods must run inside the caller's transaction; the adjuster never
// opens or commits one itself.
package ledger

import (
	"context"
	"time"

	"procura/internal/core/id"
	"procura/internal/domain/catalogs/item"
)

// Store is the quantity-level view of the catalog used by the adjuster.
type Store interface {
	// LockByKeys takes row locks on existing items in the order of keys.
	// Missing keys are ignored.
	LockByKeys(ctx context.Context, keys []string) error

	// GetByKeyForUpdate returns the locked row or a NotFound AppError.
	GetByKeyForUpdate(ctx context.Context, key string) (*item.Item, error)

	// UpsertAdd inserts candidate, or adds candidate.Qty to the row with the
	// same normalized name. Both paths are a single atomic statement.
	UpsertAdd(ctx context.Context, candidate *item.Item) (*item.Item, error)

	// AddQty adds delta to the row and returns it.
	AddQty(ctx context.Context, itemID id.ID, delta int64, actor string) (*item.Item, error)

	// DecreaseFloored subtracts n, flooring at zero. Returns nil, nil when the key is absent.
	DecreaseFloored(ctx context.Context, key string, n int64, actor string) (*item.Item, error)
}

// MovementKind classifies a journal entry.
type MovementKind string

const (
	KindInflow  MovementKind = "inflow"
	KindOutflow MovementKind = "outflow"
	KindRevert  MovementKind = "revert"
)

// Movement is one applied adjustment.
type Movement struct {
	ID         id.ID        `db:"id" json:"id"`
	ItemID     id.ID        `db:"item_id" json:"itemId"`
	ItemKey    string       `db:"item_key" json:"itemKey"`
	SourceType string       `db:"source_type" json:"sourceType"`
	SourceID   id.ID        `db:"source_id" json:"sourceId"`
	Kind       MovementKind `db:"kind" json:"kind"`
	Delta      int64        `db:"delta" json:"delta"`
	QtyAfter   int64        `db:"qty_after" json:"qtyAfter"`
	CreatedBy  string       `db:"created_by" json:"createdBy"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}

// Journal appends movements.
type Journal interface {
	Record(ctx context.Context, m *Movement) error
	ListByItem(ctx context.Context, itemID id.ID, limit int) ([]*Movement, error)
}
