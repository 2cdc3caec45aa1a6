package srequest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura/internal/core/apperror"
)

func validRequest() *ServiceRequest {
	sr := NewServiceRequest()
	sr.Number = "SR-001"
	sr.OpenDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sr.ExpectedDate = time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	sr.CostCenter = "CC-10"
	sr.Location = "Warehouse A"
	sr.RequestBy = "maintenance"
	sr.Items = LineItems{{Name: "Bolt", Qty: 2}}
	return sr
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ServiceRequest)
		wantField string
	}{
		{"valid", func(*ServiceRequest) {}, ""},
		{"missing number", func(sr *ServiceRequest) { sr.Number = "" }, "number"},
		{"missing open date", func(sr *ServiceRequest) { sr.OpenDate = time.Time{} }, "open_date"},
		{"missing request_by", func(sr *ServiceRequest) { sr.RequestBy = "  " }, "request_by"},
		{"no items", func(sr *ServiceRequest) { sr.Items = nil }, "items"},
		{"blank item name", func(sr *ServiceRequest) { sr.Items = LineItems{{Name: " ", Qty: 1}} }, "items"},
		{"zero qty", func(sr *ServiceRequest) { sr.Items = LineItems{{Name: "Bolt", Qty: 0}} }, "items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := validRequest()
			tt.mutate(sr)

			err := sr.Validate(context.Background())
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.wantField, appErr.Details["field"])
		})
	}
}

func TestNormalize_DefaultsStatus(t *testing.T) {
	sr := &ServiceRequest{Items: LineItems{{Name: "  Bolt ", Qty: 1}}}
	sr.Normalize()

	assert.Equal(t, StatusOpen, sr.Status)
	assert.Equal(t, "Bolt", sr.Items[0].Name)
}

func TestEntersApproval(t *testing.T) {
	assert.True(t, EntersApproval("open", "approved"))
	assert.True(t, EntersApproval("", "approved"))
	assert.False(t, EntersApproval("approved", "approved"))
	assert.False(t, EntersApproval("approved", "closed"))
	assert.False(t, EntersApproval("open", "Approved"))
}

func TestLineItems_ValueScan(t *testing.T) {
	in := LineItems{{Name: "Bolt", Qty: 2}, {Name: "Nut", Qty: 3}}
	v, err := in.Value()
	require.NoError(t, err)

	var out LineItems
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.Empty(t, out)
	assert.Error(t, out.Scan(42))
}

func TestClone_CopiesItems(t *testing.T) {
	sr := validRequest()
	c := sr.Clone()
	c.Items[0].Qty = 99

	assert.Equal(t, int64(2), sr.Items[0].Qty)
}
