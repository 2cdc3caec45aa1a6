package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/domain"
)

// immutableColumns are never rewritten by Update.
var immutableColumns = []string{"id", "created_at", "created_by"}

// BaseRepo provides CRUD for a table whose row maps onto T via "db" tags.
// Embed it in concrete repositories.
type BaseRepo[T any] struct {
	txManager    *TxManager
	tableName    string
	entityName   string
	selectCols   []string
	searchCols   []string
	defaultOrder string
	newFn        func() T
}

// NewBaseRepo creates a base repository. T is a pointer to the row struct.
func NewBaseRepo[T any](txManager *TxManager, tableName, entityName string, newFn func() T) *BaseRepo[T] {
	return &BaseRepo[T]{
		txManager:    txManager,
		tableName:    tableName,
		entityName:   entityName,
		selectCols:   Columns[T](),
		defaultOrder: "created_at DESC",
		newFn:        newFn,
	}
}

// WithSearch sets the columns matched by ListFilter.Search.
func (r *BaseRepo[T]) WithSearch(cols ...string) *BaseRepo[T] {
	r.searchCols = cols
	return r
}

// WithDefaultOrder sets the ORDER BY used when the filter has none.
func (r *BaseRepo[T]) WithDefaultOrder(order string) *BaseRepo[T] {
	r.defaultOrder = order
	return r
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (r *BaseRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Querier returns the transaction in ctx or the pool.
func (r *BaseRepo[T]) Querier(ctx context.Context) Querier {
	return r.txManager.GetQuerier(ctx)
}

// SelectColumns returns the mapped columns.
func (r *BaseRepo[T]) SelectColumns() []string { return r.selectCols }

// Select starts a SELECT of all mapped columns.
func (r *BaseRepo[T]) Select() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(r.tableName)
}

func (r *BaseRepo[T]) columnData(entity T, exclude ...string) (map[string]any, error) {
	data := StructToMap(entity)
	if len(data) == 0 {
		return nil, fmt.Errorf("no db tags found in %T", entity)
	}
	return Without(data, exclude...), nil
}

// Create inserts entity.
func (r *BaseRepo[T]) Create(ctx context.Context, entity T) error {
	data, err := r.columnData(entity)
	if err != nil {
		return err
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return MapError(fmt.Errorf("insert %s: %w", r.tableName, err), r.entityName)
	}
	return nil
}

// Update rewrites every mutable column of entity.
func (r *BaseRepo[T]) Update(ctx context.Context, entity T) error {
	full := StructToMap(entity)
	entityID, ok := full["id"]
	if !ok {
		return fmt.Errorf("%T has no 'id' column", entity)
	}
	data, err := r.columnData(entity, immutableColumns...)
	if err != nil {
		return err
	}

	sql, args, err := r.Builder().
		Update(r.tableName).
		SetMap(data).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return MapError(fmt.Errorf("update %s: %w", r.tableName, err), r.entityName)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID)
	}
	return nil
}

// GetByID loads one row.
func (r *BaseRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.get(ctx, r.Select().Where(squirrel.Eq{"id": entityID}).Limit(1), entityID)
}

// GetForUpdate loads one row and locks it until the transaction ends.
func (r *BaseRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	q := r.Select().Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE")
	return r.get(ctx, q, entityID)
}

// GetOne runs q and scans a single row.
func (r *BaseRepo[T]) GetOne(ctx context.Context, q squirrel.Sqlizer, key any) (T, error) {
	return r.get(ctx, q, key)
}

func (r *BaseRepo[T]) get(ctx context.Context, q squirrel.Sqlizer, key any) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			var zero T
			return zero, apperror.NewNotFound(r.entityName, fmt.Sprint(key))
		}
		return entity, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return entity, nil
}

// Delete removes a row permanently.
func (r *BaseRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	sql, args, err := r.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return MapError(fmt.Errorf("delete %s: %w", r.tableName, err), r.entityName)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

// ListQuery applies search, status and ordering. Pagination is applied by List.
func (r *BaseRepo[T]) ListQuery(filter domain.ListFilter) (squirrel.SelectBuilder, error) {
	q := r.Select()

	if filter.Search != "" && len(r.searchCols) > 0 {
		pattern := "%" + strings.TrimSpace(filter.Search) + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}

	if filter.Status != "" && r.hasColumn("status") {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}

	return q, nil
}

// List retrieves rows with filtering and pagination.
func (r *BaseRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter.Normalize()
	result := domain.ListResult[T]{
		Items:  make([]T, 0),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q, err := r.ListQuery(filter)
	if err != nil {
		return result, err
	}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}

	sql, args, err := q.OrderBy(orderBy).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return result, nil
}

// parseOrderBy turns "name" / "-created_at" into a whitelisted ORDER BY clause.
func (r *BaseRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return r.defaultOrder, nil
	}

	col, dir := orderBy, "ASC"
	if strings.HasPrefix(orderBy, "-") {
		col, dir = orderBy[1:], "DESC"
	}
	if !r.hasColumn(col) {
		return "", apperror.NewValidation("invalid order by column").WithDetail("column", col)
	}
	return col + " " + dir, nil
}

func (r *BaseRepo[T]) hasColumn(col string) bool {
	for _, c := range r.selectCols {
		if c == col {
			return true
		}
	}
	return false
}
