package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/domain/events"
	"procura/internal/domain/ledger"
	"procura/internal/testutil/memstore"
)

func newAdjuster(store *memstore.Store) *ledger.Adjuster {
	return ledger.NewAdjuster(store.Items(), store.Journal(), store.Outbox())
}

func src() ledger.Source {
	return ledger.Source{Type: "receiving", ID: id.New(), Actor: "tester"}
}

// inTx runs fn the way services do: inside a transaction.
func inTx(t *testing.T, store *memstore.Store, fn func(ctx context.Context) error) error {
	t.Helper()
	return store.RunInTransaction(context.Background(), fn)
}

func TestApplyDelta_InflowExistingItem(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 10)
	adj := newAdjuster(store)

	err := inTx(t, store, func(ctx context.Context) error {
		it, err := adj.ApplyDelta(ctx, " BOLT ", 5, ledger.Defaults{}, src())
		require.NoError(t, err)
		assert.Equal(t, int64(15), it.Qty)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(15), store.Qty("bolt"))
	assert.Equal(t, 1, store.ItemCount())
}

func TestApplyDelta_InflowCreatesItem(t *testing.T) {
	store := memstore.New()
	adj := newAdjuster(store)

	err := inTx(t, store, func(ctx context.Context) error {
		_, err := adj.ApplyDelta(ctx, " Bolt M6 ", 10, ledger.Defaults{UnitType: "pcs", Supplier: "ACME"}, src())
		return err
	})
	require.NoError(t, err)

	it, ok := store.ItemByName("bolt m6")
	require.True(t, ok)
	assert.Equal(t, "Bolt M6", it.Name)
	assert.Equal(t, int64(10), it.Qty)
	assert.Equal(t, "pcs", it.UnitType)
	assert.Equal(t, "ACME", it.Supplier)
	assert.Equal(t, "tester", it.CreatedBy)
}

func TestApplyDelta_OutflowUnknownItem(t *testing.T) {
	store := memstore.New()
	adj := newAdjuster(store)

	err := inTx(t, store, func(ctx context.Context) error {
		_, err := adj.ApplyDelta(ctx, "Nut", -1, ledger.Defaults{}, src())
		return err
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeItemNotFound, appErr.Code)
	assert.Equal(t, "Nut", appErr.Details["item_name"])
	assert.Equal(t, 0, store.ItemCount())
}

func TestApplyDelta_OutflowInsufficient(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 3)
	adj := newAdjuster(store)

	err := inTx(t, store, func(ctx context.Context) error {
		_, err := adj.ApplyDelta(ctx, "bolt", -5, ledger.Defaults{}, src())
		return err
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(3), appErr.Details["available"])
	assert.Equal(t, int64(5), appErr.Details["requested"])
	assert.Equal(t, int64(3), store.Qty("bolt"))
}

func TestApplyDelta_OutflowToZero(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 5)
	adj := newAdjuster(store)

	err := inTx(t, store, func(ctx context.Context) error {
		_, err := adj.ApplyDelta(ctx, "Bolt", -5, ledger.Defaults{}, src())
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), store.Qty("bolt"))
}

func TestApplyDelta_ZeroIsNoop(t *testing.T) {
	store := memstore.New()
	adj := newAdjuster(store)

	err := inTx(t, store, func(ctx context.Context) error {
		it, err := adj.ApplyDelta(ctx, "Bolt", 0, ledger.Defaults{}, src())
		assert.Nil(t, it)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 0, store.ItemCount())
	assert.Empty(t, store.Movements())
}

func TestApplyDelta_BlankName(t *testing.T) {
	store := memstore.New()
	adj := newAdjuster(store)

	_, err := adj.ApplyDelta(context.Background(), "   ", 5, ledger.Defaults{}, src())
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestRevert_FloorsAtZero(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 20)
	adj := newAdjuster(store)

	err := inTx(t, store, func(ctx context.Context) error {
		_, err := adj.Revert(ctx, "bolt", 50, src())
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), store.Qty("bolt"))
	assert.Equal(t, 1, store.ItemCount(), "revert never deletes the row")
}

func TestRevert_MissingItemIsNoop(t *testing.T) {
	store := memstore.New()
	adj := newAdjuster(store)

	err := inTx(t, store, func(ctx context.Context) error {
		it, err := adj.Revert(ctx, "ghost", 5, src())
		assert.Nil(t, it)
		return err
	})

	require.NoError(t, err)
	assert.Empty(t, store.Movements())
}

func TestApplyDelta_RecordsMovementAndEvent(t *testing.T) {
	store := memstore.New()
	adj := newAdjuster(store)
	source := src()

	err := inTx(t, store, func(ctx context.Context) error {
		_, err := adj.ApplyDelta(ctx, "Bolt", 7, ledger.Defaults{}, source)
		return err
	})
	require.NoError(t, err)

	movements := store.Movements()
	require.Len(t, movements, 1)
	assert.Equal(t, ledger.KindInflow, movements[0].Kind)
	assert.Equal(t, int64(7), movements[0].Delta)
	assert.Equal(t, int64(7), movements[0].QtyAfter)
	assert.Equal(t, source.ID, movements[0].SourceID)

	evs := store.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeItemStockChanged, evs[0].EventType)
	payload, ok := evs[0].Payload.(events.StockChanged)
	require.True(t, ok)
	assert.Equal(t, "bolt", payload.ItemKey)
	assert.Equal(t, "inflow", payload.Kind)
}

func TestApplyDelta_JournalFailureRollsBack(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 1)
	adj := newAdjuster(store)
	boom := errors.New("disk full")
	store.FailOnce("journal.record", boom)

	err := inTx(t, store, func(ctx context.Context) error {
		_, err := adj.ApplyDelta(ctx, "Bolt", 4, ledger.Defaults{}, src())
		return err
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), store.Qty("bolt"))
}

func TestLockKeys_Empty(t *testing.T) {
	adj := newAdjuster(memstore.New())
	assert.NoError(t, adj.LockKeys(context.Background(), []string{" ", ""}))
}

func TestMovements_NewestFirst(t *testing.T) {
	store := memstore.New()
	adj := newAdjuster(store)

	err := inTx(t, store, func(ctx context.Context) error {
		if _, err := adj.ApplyDelta(ctx, "Bolt", 5, ledger.Defaults{}, src()); err != nil {
			return err
		}
		_, err := adj.ApplyDelta(ctx, "Bolt", -2, ledger.Defaults{}, src())
		return err
	})
	require.NoError(t, err)

	it, _ := store.ItemByName("bolt")
	list, err := adj.Movements(context.Background(), it.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ledger.KindOutflow, list[0].Kind)
	assert.Equal(t, int64(3), list[0].QtyAfter)
}

func TestApplyDelta_ConcurrentOutflowsNeverOversell(t *testing.T) {
	store := memstore.New()
	store.SeedItem("Bolt", 5)
	adj := newAdjuster(store)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.RunInTransaction(context.Background(), func(ctx context.Context) error {
				if err := adj.LockKeys(ctx, []string{"Bolt"}); err != nil {
					return err
				}
				_, err := adj.ApplyDelta(ctx, "bolt", -1, ledger.Defaults{}, src())
				return err
			})
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperror.HasCode(err, apperror.CodeInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, workers-5, short)
	assert.Equal(t, int64(0), store.Qty("bolt"))

	var outflows int
	for _, m := range store.Movements() {
		if m.Kind == ledger.KindOutflow {
			outflows++
		}
	}
	assert.Equal(t, 5, outflows)
}
