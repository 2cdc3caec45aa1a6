// Package receiving provides goods receivings and their stock inflow.
package receiving

import (
	"context"
	"strings"

	"procura/internal/core/apperror"
	"procura/internal/core/entity"
	"procura/internal/core/types"
	"procura/internal/domain/catalogs/item"
)

// Known statuses. Status is free text; only StatusAccepted moves stock.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// SourceType tags ledger movements created by receivings.
const SourceType = "receiving"

// Receiving records goods arriving from a supplier.
type Receiving struct {
	entity.BaseEntity
	entity.AuditFields

	Number     string `db:"number" json:"number"`
	Document   string `db:"document" json:"document"`
	Status     string `db:"status" json:"status"`
	Location   string `db:"location" json:"location"`
	CostCenter string `db:"cost_center" json:"costCenter"`
	Supplier   string `db:"supplier" json:"supplier"`

	// IDR is the unit price.
	IDR   types.Money `db:"idr" json:"idr"`
	Total types.Money `db:"total" json:"total"`
	Notes string      `db:"notes" json:"notes"`

	ItemName        string `db:"item_name" json:"itemName"`
	ConditionStatus string `db:"condition_status" json:"conditionStatus"`
	UnitType        string `db:"unit_type" json:"unitType"`
	Qty             int64  `db:"qty" json:"qty"`

	// Documentation is a file reference issued by the upload layer.
	Documentation *string `db:"documentation" json:"documentation,omitempty"`
}

// NewReceiving creates an empty pending receiving with generated ID.
func NewReceiving() *Receiving {
	return &Receiving{
		BaseEntity: entity.NewBaseEntity(),
		Status:     StatusPending,
	}
}

// Normalize trims text fields, applies the default status and derives Total
// from IDR*Qty when the client left it empty.
func (r *Receiving) Normalize() {
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		r.Status = StatusPending
	}
	r.ItemName = strings.TrimSpace(r.ItemName)
	if r.Total.IsZero() && !r.IDR.IsZero() {
		r.Total = types.LineTotal(r.IDR, r.Qty)
	}
}

// Validate implements entity.Validatable.
func (r *Receiving) Validate(ctx context.Context) error {
	if item.NormalizeName(r.ItemName) == "" {
		return apperror.NewValidation("item_name is required").WithDetail("field", "item_name")
	}
	if r.Qty < 0 {
		return apperror.NewValidation("qty must not be negative").WithDetail("field", "qty")
	}
	if r.IDR.IsNegative() {
		return apperror.NewValidation("idr must not be negative").WithDetail("field", "idr")
	}
	if r.Total.IsNegative() {
		return apperror.NewValidation("total must not be negative").WithDetail("field", "total")
	}
	return nil
}

// Clone returns a deep copy.
func (r *Receiving) Clone() *Receiving {
	c := *r
	if r.Documentation != nil {
		doc := *r.Documentation
		c.Documentation = &doc
	}
	return &c
}
