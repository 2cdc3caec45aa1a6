package catalog_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura/internal/core/id"
	"procura/internal/domain"
	"procura/internal/domain/catalogs/item"
)

func TestItemRepo_LockQuery(t *testing.T) {
	r := NewItemRepo(nil)

	sql, args, err := r.lockQuery([]string{"a", "b"}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM items WHERE normalized_name IN ($1,$2) ORDER BY normalized_name FOR UPDATE", sql)
	assert.Equal(t, []any{"a", "b"}, args)
}

func TestItemRepo_UpsertQuery(t *testing.T) {
	r := NewItemRepo(nil)
	candidate := item.NewItem("Bolt")
	candidate.Qty = 5

	q, err := r.upsertQuery(candidate)
	require.NoError(t, err)
	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO items (")
	assert.Contains(t, sql, "ON CONFLICT (normalized_name) DO UPDATE SET")
	assert.Contains(t, sql, "qty = items.qty + EXCLUDED.qty")
	assert.Contains(t, sql, "RETURNING id, created_at, updated_at")
	assert.Contains(t, args, "bolt")
	assert.Contains(t, args, int64(5))
}

func TestItemRepo_QtyUpdates(t *testing.T) {
	r := NewItemRepo(nil)

	t.Run("add", func(t *testing.T) {
		itemID := id.New()
		sql, args, err := r.qtyUpdate(squirrel.Expr("qty + ?", int64(-3)), "alice").
			Where(squirrel.Eq{"id": itemID}).
			ToSql()
		require.NoError(t, err)

		assert.Regexp(t, `^UPDATE items SET qty = qty \+ \$1, updated_at = \$2, updated_by = \$3 WHERE id = \$4 RETURNING `, sql)
		assert.Equal(t, int64(-3), args[0])
		assert.Equal(t, "alice", args[2])
		assert.Equal(t, itemID.String(), args[3])
	})

	t.Run("floored", func(t *testing.T) {
		sql, _, err := r.qtyUpdate(squirrel.Expr("GREATEST(qty - ?, 0)", int64(7)), "system").
			Where(squirrel.Eq{"normalized_name": "bolt"}).
			ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "SET qty = GREATEST(qty - $1, 0)")
		assert.Contains(t, sql, "WHERE normalized_name = $4")
	})
}

func TestItemRepo_ListQuery(t *testing.T) {
	r := NewItemRepo(nil)

	q, err := r.ListQuery(domain.ListFilter{Search: "bolt"})
	require.NoError(t, err)
	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE (name ILIKE $1 OR part_no ILIKE $2 OR supplier ILIKE $3)")
	assert.Equal(t, []any{"%bolt%", "%bolt%", "%bolt%"}, args)
}
