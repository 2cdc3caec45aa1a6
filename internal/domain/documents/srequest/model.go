// Package srequest provides service requests and their stock outflow on approval.
package srequest

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"procura/internal/core/apperror"
	"procura/internal/core/entity"
	"procura/internal/domain/catalogs/item"
)

// Known statuses. Only entering StatusApproved moves stock.
const (
	StatusOpen     = "open"
	StatusApproved = "approved"
)

// SourceType tags ledger movements created by service requests.
const SourceType = "service_request"

// LineItem is one requested item.
type LineItem struct {
	Name string `json:"name"`
	Qty  int64  `json:"qty"`
}

// LineItems is stored as a JSONB array.
type LineItems []LineItem

// Value implements driver.Valuer.
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *LineItems) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = LineItems{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("line items: unsupported source type %T", src)
	}
}

// Names returns the item names in request order.
func (l LineItems) Names() []string {
	names := make([]string, len(l))
	for i, li := range l {
		names[i] = li.Name
	}
	return names
}

// ServiceRequest asks for items to be issued from stock.
type ServiceRequest struct {
	entity.BaseEntity
	entity.AuditFields

	Number       string    `db:"number" json:"number"`
	Status       string    `db:"status" json:"status"`
	OpenDate     time.Time `db:"open_date" json:"openDate"`
	ExpectedDate time.Time `db:"expected_date" json:"expectedDate"`
	CostCenter   string    `db:"cost_center" json:"costCenter"`
	Location     string    `db:"location" json:"location"`
	RequestBy    string    `db:"request_by" json:"requestBy"`
	Notes        string    `db:"notes" json:"notes"`
	Items        LineItems `db:"items" json:"items"`
}

// NewServiceRequest creates an open request with generated ID.
func NewServiceRequest() *ServiceRequest {
	return &ServiceRequest{
		BaseEntity: entity.NewBaseEntity(),
		Status:     StatusOpen,
	}
}

// Normalize trims text fields and applies the default status.
func (sr *ServiceRequest) Normalize() {
	sr.Status = strings.TrimSpace(sr.Status)
	if sr.Status == "" {
		sr.Status = StatusOpen
	}
	sr.Number = strings.TrimSpace(sr.Number)
	for i := range sr.Items {
		sr.Items[i].Name = strings.TrimSpace(sr.Items[i].Name)
	}
}

// Validate implements entity.Validatable.
func (sr *ServiceRequest) Validate(ctx context.Context) error {
	required := []struct {
		field string
		empty bool
	}{
		{"number", sr.Number == ""},
		{"open_date", sr.OpenDate.IsZero()},
		{"expected_date", sr.ExpectedDate.IsZero()},
		{"cost_center", strings.TrimSpace(sr.CostCenter) == ""},
		{"location", strings.TrimSpace(sr.Location) == ""},
		{"request_by", strings.TrimSpace(sr.RequestBy) == ""},
	}
	for _, r := range required {
		if r.empty {
			return apperror.NewValidation(r.field+" is required").WithDetail("field", r.field)
		}
	}

	if len(sr.Items) == 0 {
		return apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}
	for i, li := range sr.Items {
		if item.NormalizeName(li.Name) == "" {
			return apperror.NewValidation(fmt.Sprintf("items[%d].name is required", i)).
				WithDetail("field", "items").
				WithDetail("index", i)
		}
		if li.Qty < 1 {
			return apperror.NewValidation(fmt.Sprintf("items[%d].qty must be at least 1", i)).
				WithDetail("field", "items").
				WithDetail("index", i)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (sr *ServiceRequest) Clone() *ServiceRequest {
	c := *sr
	c.Items = append(LineItems(nil), sr.Items...)
	return &c
}

// EntersApproval reports whether moving from prev to next status deducts stock.
func EntersApproval(prevStatus, nextStatus string) bool {
	return prevStatus != StatusApproved && nextStatus == StatusApproved
}
