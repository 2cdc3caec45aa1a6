package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"procura/internal/core/id"
	"procura/internal/domain"
	"procura/internal/infrastructure/http/v1/dto"
)

// CRUDService is implemented by the item, receiving and service-request services.
type CRUDService[T any] interface {
	GetByID(ctx context.Context, id id.ID) (T, error)
	Create(ctx context.Context, entity T) error
	Update(ctx context.Context, id id.ID, apply func(T)) (T, error)
	Delete(ctx context.Context, id id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
}

// CRUDHandlerConfig configures a CRUDHandler.
type CRUDHandlerConfig[T any, CreateDTO any, UpdateDTO any, Resp any] struct {
	Service      CRUDService[T]
	MapCreateDTO func(req *CreateDTO) T
	ApplyUpdate  func(req *UpdateDTO, entity T)
	MapToDTO     func(entity T) Resp
}

// CRUDHandler provides generic HTTP handlers over a CRUDService.
type CRUDHandler[T any, CreateDTO any, UpdateDTO any, Resp any] struct {
	*BaseHandler
	service      CRUDService[T]
	mapCreateDTO func(req *CreateDTO) T
	applyUpdate  func(req *UpdateDTO, entity T)
	mapToDTO     func(entity T) Resp
}

// NewCRUDHandler creates a new generic handler.
func NewCRUDHandler[T any, CreateDTO any, UpdateDTO any, Resp any](
	base *BaseHandler,
	cfg CRUDHandlerConfig[T, CreateDTO, UpdateDTO, Resp],
) *CRUDHandler[T, CreateDTO, UpdateDTO, Resp] {
	return &CRUDHandler[T, CreateDTO, UpdateDTO, Resp]{
		BaseHandler:  base,
		service:      cfg.Service,
		mapCreateDTO: cfg.MapCreateDTO,
		applyUpdate:  cfg.ApplyUpdate,
		mapToDTO:     cfg.MapToDTO,
	}
}

// List handles GET /{entity}
func (h *CRUDHandler[T, CreateDTO, UpdateDTO, Resp]) List(c *gin.Context) {
	filter := h.ListFilter(c)

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]Resp, 0, len(result.Items))
	for _, e := range result.Items {
		items = append(items, h.mapToDTO(e))
	}
	h.OK(c, dto.ListResponse[Resp]{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /{entity}/:id
func (h *CRUDHandler[T, CreateDTO, UpdateDTO, Resp]) Get(c *gin.Context) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.mapToDTO(entity))
}

// Create handles POST /{entity}
func (h *CRUDHandler[T, CreateDTO, UpdateDTO, Resp]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	entity := h.mapCreateDTO(&req)
	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, h.mapToDTO(entity))
}

// Update handles PUT and PATCH /{entity}/:id. Both merge the fields present in
// the body into the locked current record.
func (h *CRUDHandler[T, CreateDTO, UpdateDTO, Resp]) Update(c *gin.Context) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), entityID, func(entity T) {
		h.applyUpdate(&req, entity)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.mapToDTO(updated))
}

// Delete handles DELETE /{entity}/:id
func (h *CRUDHandler[T, CreateDTO, UpdateDTO, Resp]) Delete(c *gin.Context) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
