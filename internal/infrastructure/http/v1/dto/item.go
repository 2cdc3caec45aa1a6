package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"procura/internal/domain/catalogs/item"
	"procura/internal/domain/ledger"
)

// CreateItemRequest is the request body for creating a catalog item.
type CreateItemRequest struct {
	PartNo     string           `json:"partNo"`
	Name       string           `json:"name" binding:"required"`
	Supplier   string           `json:"supplier"`
	UnitType   string           `json:"unitType"`
	Unit       string           `json:"unit"`
	Conversion *decimal.Decimal `json:"conversion"`
	Qty        int64            `json:"qty" binding:"gte=0"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateItemRequest) ToEntity() *item.Item {
	it := item.NewItem(r.Name)
	it.PartNo = r.PartNo
	it.Supplier = r.Supplier
	it.UnitType = r.UnitType
	it.Unit = r.Unit
	if r.Conversion != nil {
		it.Conversion = *r.Conversion
	}
	it.Qty = r.Qty
	return it
}

// UpdateItemRequest is a partial update; absent fields keep their value.
type UpdateItemRequest struct {
	PartNo     *string          `json:"partNo"`
	Name       *string          `json:"name"`
	Supplier   *string          `json:"supplier"`
	UnitType   *string          `json:"unitType"`
	Unit       *string          `json:"unit"`
	Conversion *decimal.Decimal `json:"conversion"`
	Qty        *int64           `json:"qty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateItemRequest) ApplyTo(it *item.Item) {
	if r.PartNo != nil {
		it.PartNo = *r.PartNo
	}
	if r.Name != nil {
		it.Name = *r.Name
	}
	if r.Supplier != nil {
		it.Supplier = *r.Supplier
	}
	if r.UnitType != nil {
		it.UnitType = *r.UnitType
	}
	if r.Unit != nil {
		it.Unit = *r.Unit
	}
	if r.Conversion != nil {
		it.Conversion = *r.Conversion
	}
	if r.Qty != nil {
		it.Qty = *r.Qty
	}
}

// ItemResponse is the API representation of a catalog item.
type ItemResponse struct {
	ID         string          `json:"id"`
	PartNo     string          `json:"partNo"`
	Name       string          `json:"name"`
	Supplier   string          `json:"supplier"`
	UnitType   string          `json:"unitType"`
	Unit       string          `json:"unit"`
	Conversion decimal.Decimal `json:"conversion"`
	Qty        int64           `json:"qty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	CreatedBy  string          `json:"createdBy"`
	UpdatedBy  string          `json:"updatedBy"`
}

// FromItem creates ItemResponse from the domain entity.
func FromItem(it *item.Item) ItemResponse {
	return ItemResponse{
		ID:         it.ID.String(),
		PartNo:     it.PartNo,
		Name:       it.Name,
		Supplier:   it.Supplier,
		UnitType:   it.UnitType,
		Unit:       it.Unit,
		Conversion: it.Conversion,
		Qty:        it.Qty,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
		CreatedBy:  it.CreatedBy,
		UpdatedBy:  it.UpdatedBy,
	}
}

// MovementResponse is one journal entry.
type MovementResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Delta      int64     `json:"delta"`
	QtyAfter   int64     `json:"qtyAfter"`
	SourceType string    `json:"sourceType"`
	SourceID   string    `json:"sourceId"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FromMovements maps journal entries.
func FromMovements(ms []*ledger.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, MovementResponse{
			ID:         m.ID.String(),
			Kind:       string(m.Kind),
			Delta:      m.Delta,
			QtyAfter:   m.QtyAfter,
			SourceType: m.SourceType,
			SourceID:   m.SourceID.String(),
			CreatedBy:  m.CreatedBy,
			CreatedAt:  m.CreatedAt,
		})
	}
	return out
}
