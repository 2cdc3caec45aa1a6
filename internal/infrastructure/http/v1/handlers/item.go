package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"procura/internal/core/id"
	"procura/internal/domain/catalogs/item"
	"procura/internal/domain/ledger"
	"procura/internal/infrastructure/http/v1/dto"
)

const defaultMovementLimit = 100

// MovementLister returns the stock journal of an item.
type MovementLister interface {
	Movements(ctx context.Context, itemID id.ID, limit int) ([]*ledger.Movement, error)
}

// ItemHandler handles /items.
type ItemHandler struct {
	*CRUDHandler[*item.Item, dto.CreateItemRequest, dto.UpdateItemRequest, dto.ItemResponse]
	movements MovementLister
}

// NewItemHandler creates the item handler.
func NewItemHandler(base *BaseHandler, service CRUDService[*item.Item], movements MovementLister) *ItemHandler {
	return &ItemHandler{
		CRUDHandler: NewCRUDHandler(base, CRUDHandlerConfig[*item.Item, dto.CreateItemRequest, dto.UpdateItemRequest, dto.ItemResponse]{
			Service:      service,
			MapCreateDTO: (*dto.CreateItemRequest).ToEntity,
			ApplyUpdate:  (*dto.UpdateItemRequest).ApplyTo,
			MapToDTO:     dto.FromItem,
		}),
		movements: movements,
	}
}

// Movements handles GET /items/:id/movements
func (h *ItemHandler) Movements(c *gin.Context) {
	itemID, ok := h.ParseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// 404 for unknown items rather than an empty journal.
	if _, err := h.service.GetByID(ctx, itemID); err != nil {
		h.Error(c, err)
		return
	}

	ms, err := h.movements.Movements(ctx, itemID, h.ParseIntQuery(c, "limit", defaultMovementLimit))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMovements(ms))
}
