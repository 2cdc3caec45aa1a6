package dto

import (
	"time"

	"procura/internal/core/types"
	"procura/internal/domain/documents/receiving"
)

// CreateReceivingRequest represents a request to create a receiving.
type CreateReceivingRequest struct {
	Number          string  `json:"number"`
	Document        string  `json:"document"`
	Status          string  `json:"status"`
	Location        string  `json:"location"`
	CostCenter      string  `json:"costCenter"`
	Supplier        string  `json:"supplier"`
	IDR             Amount  `json:"idr"`
	Total           Amount  `json:"total"`
	Notes           string  `json:"notes"`
	ItemName        string  `json:"itemName" binding:"required"`
	ConditionStatus string  `json:"conditionStatus"`
	UnitType        string  `json:"unitType"`
	Qty             int64   `json:"qty"`
	Documentation   *string `json:"documentation"`
}

// ToEntity converts request to domain entity.
func (r *CreateReceivingRequest) ToEntity() *receiving.Receiving {
	rec := receiving.NewReceiving()
	rec.Number = r.Number
	rec.Document = r.Document
	rec.Status = r.Status
	rec.Location = r.Location
	rec.CostCenter = r.CostCenter
	rec.Supplier = r.Supplier
	rec.IDR = r.IDR.Value
	rec.Total = r.Total.Value
	rec.Notes = r.Notes
	rec.ItemName = r.ItemName
	rec.ConditionStatus = r.ConditionStatus
	rec.UnitType = r.UnitType
	rec.Qty = r.Qty
	rec.Documentation = r.Documentation
	return rec
}

// UpdateReceivingRequest is a partial update applied under the row lock.
// An absent documentation keeps the stored reference.
type UpdateReceivingRequest struct {
	Number          *string `json:"number"`
	Document        *string `json:"document"`
	Status          *string `json:"status"`
	Location        *string `json:"location"`
	CostCenter      *string `json:"costCenter"`
	Supplier        *string `json:"supplier"`
	IDR             *Amount `json:"idr"`
	Total           *Amount `json:"total"`
	Notes           *string `json:"notes"`
	ItemName        *string `json:"itemName"`
	ConditionStatus *string `json:"conditionStatus"`
	UnitType        *string `json:"unitType"`
	Qty             *int64  `json:"qty"`
	Documentation   *string `json:"documentation"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateReceivingRequest) ApplyTo(rec *receiving.Receiving) {
	setString(&rec.Number, r.Number)
	setString(&rec.Document, r.Document)
	setString(&rec.Status, r.Status)
	setString(&rec.Location, r.Location)
	setString(&rec.CostCenter, r.CostCenter)
	setString(&rec.Supplier, r.Supplier)
	setString(&rec.Notes, r.Notes)
	setString(&rec.ItemName, r.ItemName)
	setString(&rec.ConditionStatus, r.ConditionStatus)
	setString(&rec.UnitType, r.UnitType)

	if r.IDR != nil {
		rec.IDR = r.IDR.Value
	}
	if r.Total != nil {
		rec.Total = r.Total.Value
	}
	if r.Qty != nil {
		rec.Qty = *r.Qty
	}
	if r.Documentation != nil {
		rec.Documentation = r.Documentation
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// ReceivingResponse is the API representation of a receiving.
type ReceivingResponse struct {
	ID              string      `json:"id"`
	Number          string      `json:"number"`
	Document        string      `json:"document"`
	Status          string      `json:"status"`
	Location        string      `json:"location"`
	CostCenter      string      `json:"costCenter"`
	Supplier        string      `json:"supplier"`
	IDR             types.Money `json:"idr"`
	Total           types.Money `json:"total"`
	Notes           string      `json:"notes"`
	ItemName        string      `json:"itemName"`
	ConditionStatus string      `json:"conditionStatus"`
	UnitType        string      `json:"unitType"`
	Qty             int64       `json:"qty"`
	Documentation   *string     `json:"documentation,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	CreatedBy       string      `json:"createdBy"`
	UpdatedBy       string      `json:"updatedBy"`
}

// FromReceiving creates the response DTO.
func FromReceiving(r *receiving.Receiving) ReceivingResponse {
	return ReceivingResponse{
		ID:              r.ID.String(),
		Number:          r.Number,
		Document:        r.Document,
		Status:          r.Status,
		Location:        r.Location,
		CostCenter:      r.CostCenter,
		Supplier:        r.Supplier,
		IDR:             r.IDR,
		Total:           r.Total,
		Notes:           r.Notes,
		ItemName:        r.ItemName,
		ConditionStatus: r.ConditionStatus,
		UnitType:        r.UnitType,
		Qty:             r.Qty,
		Documentation:   r.Documentation,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		CreatedBy:       r.CreatedBy,
		UpdatedBy:       r.UpdatedBy,
	}
}
