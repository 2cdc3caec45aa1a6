package receiving

import (
	"context"

	"procura/internal/core/id"
	"procura/internal/domain"
)

// Repository persists receivings. All methods honour the transaction in ctx.
type Repository interface {
	Create(ctx context.Context, r *Receiving) error
	Update(ctx context.Context, r *Receiving) error
	GetByID(ctx context.Context, recID id.ID) (*Receiving, error)
	// GetForUpdate loads the row with SELECT ... FOR UPDATE.
	GetForUpdate(ctx context.Context, recID id.ID) (*Receiving, error)
	Delete(ctx context.Context, recID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Receiving], error)
}
