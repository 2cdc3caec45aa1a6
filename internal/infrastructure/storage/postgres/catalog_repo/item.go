// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/domain/catalogs/item"
	"procura/internal/domain/ledger"
	"procura/internal/infrastructure/storage/postgres"
	"procura/pkg/logger"
)

const itemsTable = "items"

var (
	_ item.Repository = (*ItemRepo)(nil)
	_ ledger.Store    = (*ItemRepo)(nil)
)

// ItemRepo is the catalog store and the row-locking view used by the ledger.
type ItemRepo struct {
	*postgres.BaseRepo[*item.Item]
}

// NewItemRepo creates an item repository.
func NewItemRepo(txManager *postgres.TxManager) *ItemRepo {
	base := postgres.NewBaseRepo(txManager, itemsTable, "item", func() *item.Item { return new(item.Item) }).
		WithSearch("name", "part_no", "supplier").
		WithDefaultOrder("normalized_name ASC")
	return &ItemRepo{BaseRepo: base}
}

func (r *ItemRepo) returning() string {
	return "RETURNING " + strings.Join(r.SelectColumns(), ", ")
}

// LockByKeys locks existing rows in ascending key order so concurrent
// multi-item adjustments acquire locks in the same sequence. Keys without a
// row are skipped.
func (r *ItemRepo) LockByKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	sql, args, err := r.lockQuery(keys).ToSql()
	if err != nil {
		return fmt.Errorf("build lock query: %w", err)
	}

	var locked []id.ID
	if err := pgxscan.Select(ctx, r.Querier(ctx), &locked, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("lock items: %w", err), "item")
	}
	logger.Debug(ctx, "items locked", "keys", len(keys), "rows", len(locked))
	return nil
}

func (r *ItemRepo) lockQuery(keys []string) squirrel.SelectBuilder {
	return r.Builder().
		Select("id").
		From(itemsTable).
		Where(squirrel.Eq{"normalized_name": keys}).
		OrderBy("normalized_name").
		Suffix("FOR UPDATE")
}

// GetByKeyForUpdate loads and locks the row with the given normalized name.
func (r *ItemRepo) GetByKeyForUpdate(ctx context.Context, key string) (*item.Item, error) {
	q := r.Select().
		Where(squirrel.Eq{"normalized_name": key}).
		Suffix("FOR UPDATE")
	return r.GetOne(ctx, q, key)
}

// UpsertAdd inserts candidate or adds its qty to the existing row in one statement.
func (r *ItemRepo) UpsertAdd(ctx context.Context, candidate *item.Item) (*item.Item, error) {
	q, err := r.upsertQuery(candidate)
	if err != nil {
		return nil, err
	}
	return r.scanReturning(ctx, q, candidate.NormalizedName)
}

func (r *ItemRepo) upsertQuery(candidate *item.Item) (squirrel.InsertBuilder, error) {
	data := postgres.StructToMap(candidate)
	if len(data) == 0 {
		return squirrel.InsertBuilder{}, fmt.Errorf("no db tags found in item")
	}

	return r.Builder().
		Insert(itemsTable).
		SetMap(data).
		Suffix(`ON CONFLICT (normalized_name) DO UPDATE SET
			qty = items.qty + EXCLUDED.qty,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by ` + r.returning()), nil
}

// AddQty adds delta to the row. A result below zero fails the qty check constraint.
func (r *ItemRepo) AddQty(ctx context.Context, itemID id.ID, delta int64, actor string) (*item.Item, error) {
	q := r.qtyUpdate(squirrel.Expr("qty + ?", delta), actor).
		Where(squirrel.Eq{"id": itemID})

	it, err := r.scanReturning(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperror.NewNotFound("item", itemID.String())
	}
	return it, nil
}

// DecreaseFloored subtracts n but never below zero.
func (r *ItemRepo) DecreaseFloored(ctx context.Context, key string, n int64, actor string) (*item.Item, error) {
	q := r.qtyUpdate(squirrel.Expr("GREATEST(qty - ?, 0)", n), actor).
		Where(squirrel.Eq{"normalized_name": key})
	return r.scanReturning(ctx, q, key)
}

func (r *ItemRepo) qtyUpdate(expr squirrel.Sqlizer, actor string) squirrel.UpdateBuilder {
	return r.Builder().
		Update(itemsTable).
		Set("qty", expr).
		Set("updated_at", time.Now().UTC()).
		Set("updated_by", actor).
		Suffix(r.returning())
}

// scanReturning runs a RETURNING statement. No affected row yields nil, nil.
func (r *ItemRepo) scanReturning(ctx context.Context, q squirrel.Sqlizer, key any) (*item.Item, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	it := new(item.Item)
	if err := pgxscan.Get(ctx, r.Querier(ctx), it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, postgres.MapError(fmt.Errorf("adjust item %v: %w", key, err), "item")
	}
	return it, nil
}
