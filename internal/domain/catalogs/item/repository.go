package item

import (
	"context"

	"procura/internal/core/id"
	"procura/internal/domain"
)

// Repository is the catalog CRUD store.
// Direct writes here bypass the stock ledger; qty is still kept non-negative by the schema.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)
	GetForUpdate(ctx context.Context, itemID id.ID) (*Item, error)
	Delete(ctx context.Context, itemID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error)
}
