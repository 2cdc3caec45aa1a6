// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"procura/internal/core/id"
	"procura/internal/domain/ledger"
	"procura/internal/infrastructure/storage/postgres"
)

const movementsTable = "item_movements"

var _ ledger.Journal = (*MovementRepo)(nil)

// MovementRepo appends and reads the item movement journal.
type MovementRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewMovementRepo creates a movement journal repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.Columns[ledger.Movement](),
	}
}

// Record inserts one movement.
func (r *MovementRepo) Record(ctx context.Context, m *ledger.Movement) error {
	sql, args, err := r.insertQuery(m).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (r *MovementRepo) insertQuery(m *ledger.Movement) squirrel.InsertBuilder {
	return r.builder.Insert(movementsTable).SetMap(postgres.StructToMap(m))
}

// ListByItem returns the newest movements of an item first.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID id.ID, limit int) ([]*ledger.Movement, error) {
	sql, args, err := r.listQuery(itemID, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	movements := make([]*ledger.Movement, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

func (r *MovementRepo) listQuery(itemID id.ID, limit int) squirrel.SelectBuilder {
	q := r.builder.
		Select(r.columns...).
		From(movementsTable).
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}
