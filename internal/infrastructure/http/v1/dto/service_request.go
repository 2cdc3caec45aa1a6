package dto

import (
	"time"

	"procura/internal/domain/documents/srequest"
)

// LineItemRequest is one requested item.
type LineItemRequest struct {
	Name string `json:"name"`
	Qty  int64  `json:"qty"`
}

func toLineItems(in []LineItemRequest) srequest.LineItems {
	out := make(srequest.LineItems, 0, len(in))
	for _, li := range in {
		out = append(out, srequest.LineItem{Name: li.Name, Qty: li.Qty})
	}
	return out
}

// CreateServiceRequestRequest represents a request to create a service request.
type CreateServiceRequestRequest struct {
	Number       string            `json:"number" binding:"required"`
	Status       string            `json:"status"`
	OpenDate     Date              `json:"openDate"`
	ExpectedDate Date              `json:"expectedDate"`
	CostCenter   string            `json:"costCenter"`
	Location     string            `json:"location"`
	RequestBy    string            `json:"requestBy"`
	Notes        string            `json:"notes"`
	Items        []LineItemRequest `json:"items" binding:"required,min=1"`
}

// ToEntity converts request to domain entity.
func (r *CreateServiceRequestRequest) ToEntity() *srequest.ServiceRequest {
	sr := srequest.NewServiceRequest()
	sr.Number = r.Number
	sr.Status = r.Status
	sr.OpenDate = r.OpenDate.Time
	sr.ExpectedDate = r.ExpectedDate.Time
	sr.CostCenter = r.CostCenter
	sr.Location = r.Location
	sr.RequestBy = r.RequestBy
	sr.Notes = r.Notes
	sr.Items = toLineItems(r.Items)
	return sr
}

// UpdateServiceRequestRequest is a partial update. Items, when present, replace the list.
type UpdateServiceRequestRequest struct {
	Number       *string           `json:"number"`
	Status       *string           `json:"status"`
	OpenDate     *Date             `json:"openDate"`
	ExpectedDate *Date             `json:"expectedDate"`
	CostCenter   *string           `json:"costCenter"`
	Location     *string           `json:"location"`
	RequestBy    *string           `json:"requestBy"`
	Notes        *string           `json:"notes"`
	Items        []LineItemRequest `json:"items"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateServiceRequestRequest) ApplyTo(sr *srequest.ServiceRequest) {
	setString(&sr.Number, r.Number)
	setString(&sr.Status, r.Status)
	setString(&sr.CostCenter, r.CostCenter)
	setString(&sr.Location, r.Location)
	setString(&sr.RequestBy, r.RequestBy)
	setString(&sr.Notes, r.Notes)

	if r.OpenDate != nil {
		sr.OpenDate = r.OpenDate.Time
	}
	if r.ExpectedDate != nil {
		sr.ExpectedDate = r.ExpectedDate.Time
	}
	if r.Items != nil {
		sr.Items = toLineItems(r.Items)
	}
}

// ServiceRequestResponse is the API representation of a service request.
type ServiceRequestResponse struct {
	ID           string            `json:"id"`
	Number       string            `json:"number"`
	Status       string            `json:"status"`
	OpenDate     string            `json:"openDate"`
	ExpectedDate string            `json:"expectedDate"`
	CostCenter   string            `json:"costCenter"`
	Location     string            `json:"location"`
	RequestBy    string            `json:"requestBy"`
	Notes        string            `json:"notes"`
	Items        []LineItemRequest `json:"items"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	CreatedBy    string            `json:"createdBy"`
	UpdatedBy    string            `json:"updatedBy"`
}

// FromServiceRequest creates the response DTO.
func FromServiceRequest(sr *srequest.ServiceRequest) ServiceRequestResponse {
	items := make([]LineItemRequest, 0, len(sr.Items))
	for _, li := range sr.Items {
		items = append(items, LineItemRequest{Name: li.Name, Qty: li.Qty})
	}
	return ServiceRequestResponse{
		ID:           sr.ID.String(),
		Number:       sr.Number,
		Status:       sr.Status,
		OpenDate:     sr.OpenDate.Format(time.DateOnly),
		ExpectedDate: sr.ExpectedDate.Format(time.DateOnly),
		CostCenter:   sr.CostCenter,
		Location:     sr.Location,
		RequestBy:    sr.RequestBy,
		Notes:        sr.Notes,
		Items:        items,
		CreatedAt:    sr.CreatedAt,
		UpdatedAt:    sr.UpdatedAt,
		CreatedBy:    sr.CreatedBy,
		UpdatedBy:    sr.UpdatedBy,
	}
}
