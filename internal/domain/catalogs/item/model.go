// Package item provides the stock item catalog.
package item

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"procura/internal/core/apperror"
	"procura/internal/core/entity"
)

// Item is a catalog row carrying the on-hand quantity.
type Item struct {
	entity.BaseEntity
	entity.AuditFields

	PartNo string `db:"part_no" json:"partNo"`
	Name   string `db:"name" json:"name"`

	// NormalizedName is derived from Name on every write and is unique.
	NormalizedName string `db:"normalized_name" json:"-"`

	Supplier   string          `db:"supplier" json:"supplier"`
	UnitType   string          `db:"unit_type" json:"unitType"`
	Unit       string          `db:"unit" json:"unit"`
	Conversion decimal.Decimal `db:"conversion" json:"conversion"`

	Qty int64 `db:"qty" json:"qty"`
}

// NewItem creates an item with generated ID and a conversion factor of 1.
func NewItem(name string) *Item {
	it := &Item{
		BaseEntity: entity.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Conversion: decimal.NewFromInt(1),
	}
	it.NormalizedName = NormalizeName(it.Name)
	return it
}

// Normalize trims the display name and refreshes the derived key.
func (i *Item) Normalize() {
	i.Name = strings.TrimSpace(i.Name)
	i.NormalizedName = NormalizeName(i.Name)
	if i.Conversion.IsZero() {
		i.Conversion = decimal.NewFromInt(1)
	}
}

// Validate implements entity.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if NormalizeName(i.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if i.Qty < 0 {
		return apperror.NewValidation("qty must not be negative").WithDetail("field", "qty")
	}
	if i.Conversion.IsNegative() {
		return apperror.NewValidation("conversion must be positive").WithDetail("field", "conversion")
	}
	return nil
}
