package srequest

import (
	"context"

	"procura/internal/core/id"
	"procura/internal/domain"
)

// Repository persists service requests. All methods honour the transaction in ctx.
type Repository interface {
	Create(ctx context.Context, sr *ServiceRequest) error
	Update(ctx context.Context, sr *ServiceRequest) error
	GetByID(ctx context.Context, srID id.ID) (*ServiceRequest, error)
	// GetForUpdate loads the row with SELECT ... FOR UPDATE.
	GetForUpdate(ctx context.Context, srID id.ID) (*ServiceRequest, error)
	Delete(ctx context.Context, srID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*ServiceRequest], error)
}
