package srequest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura/internal/core/apperror"
	"procura/internal/domain/documents/srequest"
	"procura/internal/domain/ledger"
	"procura/internal/testutil/memstore"
)

func newService(store *memstore.Store) *srequest.Service {
	adj := ledger.NewAdjuster(store.Items(), store.Journal(), store.Outbox())
	return srequest.NewService(store.Requests(), adj, store, store.Recorder())
}

func newRequest(items ...srequest.LineItem) *srequest.ServiceRequest {
	sr := srequest.NewServiceRequest()
	sr.Number = "SR-001"
	sr.OpenDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sr.ExpectedDate = time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	sr.CostCenter = "CC-10"
	sr.Location = "Warehouse A"
	sr.RequestBy = "maintenance"
	sr.Items = items
	return sr
}

func approve(sr *srequest.ServiceRequest) { sr.Status = srequest.StatusApproved }

func TestCreate_NeverMovesStock(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 10)
	svc := newService(store)

	sr := newRequest(srequest.LineItem{Name: "Bolt", Qty: 4})
	sr.Status = srequest.StatusApproved
	require.NoError(t, svc.Create(context.Background(), sr))

	assert.Equal(t, int64(10), store.Qty("bolt"))
}

func TestCreate_DefaultsToOpen(t *testing.T) {
	store := memstore.New()
	svc := newService(store)

	sr := newRequest(srequest.LineItem{Name: "Bolt", Qty: 1})
	sr.Status = ""
	require.NoError(t, svc.Create(context.Background(), sr))

	got, err := svc.GetByID(context.Background(), sr.ID)
	require.NoError(t, err)
	assert.Equal(t, srequest.StatusOpen, got.Status)
	assert.Equal(t, "system", got.CreatedBy)
}

func TestUpdate_ApprovalDeducts(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 30)
	svc := newService(store)
	ctx := context.Background()

	sr := newRequest(srequest.LineItem{Name: " bolt ", Qty: 10})
	require.NoError(t, svc.Create(ctx, sr))

	got, err := svc.Update(ctx, sr.ID, approve)
	require.NoError(t, err)

	assert.Equal(t, srequest.StatusApproved, got.Status)
	assert.Equal(t, int64(20), store.Qty("bolt"))
}

func TestUpdate_AlreadyApprovedHasNoEffect(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 30)
	svc := newService(store)
	ctx := context.Background()

	sr := newRequest(srequest.LineItem{Name: "Bolt", Qty: 10})
	require.NoError(t, svc.Create(ctx, sr))
	_, err := svc.Update(ctx, sr.ID, approve)
	require.NoError(t, err)

	_, err = svc.Update(ctx, sr.ID, func(sr *srequest.ServiceRequest) {
		sr.Notes = "delivered"
		sr.Items[0].Qty = 25
	})
	require.NoError(t, err)

	assert.Equal(t, int64(20), store.Qty("bolt"))
}

func TestUpdate_UnapprovalDoesNotRestore(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 30)
	svc := newService(store)
	ctx := context.Background()

	sr := newRequest(srequest.LineItem{Name: "Bolt", Qty: 10})
	require.NoError(t, svc.Create(ctx, sr))
	_, err := svc.Update(ctx, sr.ID, approve)
	require.NoError(t, err)

	_, err = svc.Update(ctx, sr.ID, func(sr *srequest.ServiceRequest) { sr.Status = srequest.StatusOpen })
	require.NoError(t, err)
	assert.Equal(t, int64(20), store.Qty("bolt"))

	// Re-approval deducts again.
	_, err = svc.Update(ctx, sr.ID, approve)
	require.NoError(t, err)
	assert.Equal(t, int64(10), store.Qty("bolt"))
}

func TestUpdate_AtomicOutflow(t *testing.T) {
	store := memstore.New()
	store.SeedItem("A", 10)
	store.SeedItem("B", 100)
	svc := newService(store)
	ctx := context.Background()

	sr := newRequest(
		srequest.LineItem{Name: "A", Qty: 5},
		srequest.LineItem{Name: "B", Qty: 999999},
	)
	require.NoError(t, svc.Create(ctx, sr))

	_, err := svc.Update(ctx, sr.ID, approve)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "B", appErr.Details["item_name"])
	assert.Equal(t, int64(100), appErr.Details["available"])
	assert.Equal(t, int64(999999), appErr.Details["requested"])

	assert.Equal(t, int64(10), store.Qty("a"))
	assert.Equal(t, int64(100), store.Qty("b"))
	got, err := svc.GetByID(ctx, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, srequest.StatusOpen, got.Status)
	assert.Empty(t, store.Movements())
}

func TestUpdate_UnknownItemAbortsApproval(t *testing.T) {
	store := memstore.New()
	store.SeedItem("A", 10)
	svc := newService(store)
	ctx := context.Background()

	sr := newRequest(
		srequest.LineItem{Name: "A", Qty: 1},
		srequest.LineItem{Name: "Ghost", Qty: 1},
	)
	require.NoError(t, svc.Create(ctx, sr))

	_, err := svc.Update(ctx, sr.ID, approve)

	assert.True(t, apperror.HasCode(err, apperror.CodeItemNotFound))
	assert.Equal(t, int64(10), store.Qty("a"))
	assert.Equal(t, 1, store.ItemCount())
}

func TestUpdate_DuplicateLinesAccumulate(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 5)
	svc := newService(store)
	ctx := context.Background()

	sr := newRequest(
		srequest.LineItem{Name: "Bolt", Qty: 3},
		srequest.LineItem{Name: "BOLT", Qty: 3},
	)
	require.NoError(t, svc.Create(ctx, sr))

	_, err := svc.Update(ctx, sr.ID, approve)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(2), appErr.Details["available"])
	assert.Equal(t, int64(5), store.Qty("bolt"))
}

func TestUpdate_InvalidItemsRejectedBeforeLedger(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 5)
	svc := newService(store)
	ctx := context.Background()

	sr := newRequest(srequest.LineItem{Name: "Bolt", Qty: 1})
	require.NoError(t, svc.Create(ctx, sr))

	_, err := svc.Update(ctx, sr.ID, func(sr *srequest.ServiceRequest) {
		sr.Status = srequest.StatusApproved
		sr.Items = srequest.LineItems{{Name: "Bolt", Qty: 0}}
	})

	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, int64(5), store.Qty("bolt"))
}

func TestDelete(t *testing.T) {
	store := memstore.New()
	svc := newService(store)
	ctx := context.Background()

	sr := newRequest(srequest.LineItem{Name: "Bolt", Qty: 1})
	require.NoError(t, svc.Create(ctx, sr))
	require.NoError(t, svc.Delete(ctx, sr.ID))

	_, err := svc.GetByID(ctx, sr.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(svc.Delete(ctx, sr.ID)))
}
