package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"procura/internal/core/apperror"
	"procura/internal/core/entity"
	"procura/internal/core/id"
	"procura/internal/domain/catalogs/item"
	"procura/internal/domain/events"
	"procura/pkg/logger"
)

var tracer = otel.Tracer("procura/ledger")

// Source identifies the record an adjustment belongs to.
type Source struct {
	Type  string
	ID    id.ID
	Actor string
}

func (s Source) actor() string {
	if s.Actor == "" {
		return entity.DefaultActor
	}
	return s.Actor
}

// Defaults populate an item created by an inflow on an unknown key.
type Defaults struct {
	UnitType string
	Supplier string
}

// Adjuster is the only writer of item quantities driven by documents.
type Adjuster struct {
	store   Store
	journal Journal
	events  events.Publisher
}

// NewAdjuster creates an adjuster. publisher may be nil.
func NewAdjuster(store Store, journal Journal, publisher events.Publisher) *Adjuster {
	return &Adjuster{store: store, journal: journal, events: publisher}
}

// ApplyDelta adds delta to the item named name.
//
// A positive delta on an unknown name creates the item with qty = delta.
// A negative delta fails with ITEM_NOT_FOUND on an unknown name and with
// INSUFFICIENT_STOCK when the result would drop below zero.
// A zero delta is a no-op and returns nil, nil.
func (a *Adjuster) ApplyDelta(ctx context.Context, name string, delta int64, defaults Defaults, src Source) (*item.Item, error) {
	display := strings.TrimSpace(name)
	key := item.NormalizeName(name)
	if key == "" {
		return nil, apperror.NewValidation("item name is required").WithDetail("field", "item_name")
	}
	if delta == 0 {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "ledger.apply_delta", trace.WithAttributes(
		attribute.String("item.key", key),
		attribute.Int64("delta", delta),
	))
	defer span.End()

	var (
		it   *item.Item
		kind MovementKind
		err  error
	)
	if delta > 0 {
		kind = KindInflow
		candidate := item.NewItem(display)
		candidate.Qty = delta
		candidate.UnitType = defaults.UnitType
		candidate.Supplier = defaults.Supplier
		candidate.CreatedBy = src.actor()
		candidate.UpdatedBy = src.actor()
		it, err = a.store.UpsertAdd(ctx, candidate)
	} else {
		kind = KindOutflow
		it, err = a.outflow(ctx, display, key, -delta, src)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := a.record(ctx, it, kind, delta, src); err != nil {
		return nil, err
	}
	return it, nil
}

func (a *Adjuster) outflow(ctx context.Context, display, key string, n int64, src Source) (*item.Item, error) {
	cur, err := a.store.GetByKeyForUpdate(ctx, key)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewItemNotFound(display)
		}
		return nil, fmt.Errorf("lock item %q: %w", key, err)
	}
	if cur.Qty-n < 0 {
		return nil, apperror.NewInsufficientStock(display, cur.Qty, n)
	}
	return a.store.AddQty(ctx, cur.ID, -n, src.actor())
}

// Revert removes qty previously added to name. The result is floored at zero,
// a missing item is ignored and the row is never deleted.
func (a *Adjuster) Revert(ctx context.Context, name string, qty int64, src Source) (*item.Item, error) {
	key := item.NormalizeName(name)
	if key == "" || qty <= 0 {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "ledger.revert", trace.WithAttributes(
		attribute.String("item.key", key),
		attribute.Int64("qty", qty),
	))
	defer span.End()

	it, err := a.store.DecreaseFloored(ctx, key, qty, src.actor())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("revert item %q: %w", key, err)
	}
	if it == nil {
		logger.Warn(ctx, "revert skipped, item no longer in catalog", "item_key", key, "qty", qty)
		return nil, nil
	}

	if err := a.record(ctx, it, KindRevert, -qty, src); err != nil {
		return nil, err
	}
	return it, nil
}

// LockKeys row-locks every existing item among names in sorted key order.
// Call before a multi-item outflow so concurrent batches never deadlock.
func (a *Adjuster) LockKeys(ctx context.Context, names []string) error {
	keys := item.SortedKeys(names)
	if len(keys) == 0 {
		return nil
	}
	if err := a.store.LockByKeys(ctx, keys); err != nil {
		return fmt.Errorf("lock items: %w", err)
	}
	return nil
}

// Movements returns the latest journal entries of an item.
func (a *Adjuster) Movements(ctx context.Context, itemID id.ID, limit int) ([]*Movement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return a.journal.ListByItem(ctx, itemID, limit)
}

func (a *Adjuster) record(ctx context.Context, it *item.Item, kind MovementKind, delta int64, src Source) error {
	now := time.Now().UTC()
	m := &Movement{
		ID:         id.New(),
		ItemID:     it.ID,
		ItemKey:    it.NormalizedName,
		SourceType: src.Type,
		SourceID:   src.ID,
		Kind:       kind,
		Delta:      delta,
		QtyAfter:   it.Qty,
		CreatedBy:  src.actor(),
		CreatedAt:  now,
	}
	if err := a.journal.Record(ctx, m); err != nil {
		return fmt.Errorf("record movement: %w", err)
	}

	if a.events != nil {
		err := a.events.Publish(ctx, events.DomainEvent{
			AggregateType: events.AggregateItem,
			AggregateID:   it.ID,
			EventType:     events.TypeItemStockChanged,
			Payload: events.StockChanged{
				ItemID:     it.ID,
				ItemKey:    it.NormalizedName,
				ItemName:   it.Name,
				Kind:       string(kind),
				Delta:      delta,
				QtyAfter:   it.Qty,
				SourceType: src.Type,
				SourceID:   src.ID,
				OccurredAt: now,
			},
		})
		if err != nil {
			return fmt.Errorf("publish stock event: %w", err)
		}
	}

	logger.Info(ctx, "stock adjusted",
		"item_key", it.NormalizedName,
		"kind", kind,
		"delta", delta,
		"qty_after", it.Qty,
		"source", src.Type,
		"source_id", src.ID)
	return nil
}
