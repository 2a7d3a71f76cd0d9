package catalog

import (
	"context"
	"testing"

	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservation_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("enough stock leaves the stored product alone", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)
		p := testutil.NewTestProduct(t, "P1", "10.00", 5)
		repo.On("FindByID", ctx, "P1").Return(p, nil)

		r := NewStockLedger(repo).NewReservation()
		got, err := r.Add(ctx, "P1", 2)

		require.NoError(t, err)
		assert.Same(t, p, got)
		assert.Equal(t, 5, p.Quantity)
		assert.Equal(t, 3, r.Plan().Lines()[0].Remaining())
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("not enough stock", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)
		repo.On("FindByID", ctx, "P1").Return(testutil.NewTestProduct(t, "P1", "10.00", 5), nil)

		_, err := NewStockLedger(repo).NewReservation().Add(ctx, "P1", 10)

		var insufficient *shared.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 5, insufficient.Available)
		assert.Equal(t, 10, insufficient.Requested)
	})

	t.Run("unknown product", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)
		repo.On("FindByID", ctx, "nope").Return(nil, shared.NewProductNotFoundError("nope"))

		_, err := NewStockLedger(repo).NewReservation().Add(ctx, "nope", 1)

		var nf *shared.ProductNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "nope", nf.ProductID)
	})

	t.Run("non-positive quantity is rejected before reading", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)

		_, err := NewStockLedger(repo).NewReservation().Add(ctx, "P1", 0)

		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		repo.AssertNotCalled(t, "FindByID", ctx, "P1")
	})

	t.Run("merges repeated products and reads each once", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)
		repo.On("FindByID", ctx, "A").Return(testutil.NewTestProduct(t, "A", "1.00", 5), nil).Once()
		repo.On("FindByID", ctx, "B").Return(testutil.NewTestProduct(t, "B", "2.00", 1), nil).Once()

		r := NewStockLedger(repo).NewReservation()
		for _, line := range []struct {
			id  string
			qty int
		}{{"A", 2}, {"B", 1}, {"A", 3}} {
			_, err := r.Add(ctx, line.id, line.qty)
			require.NoError(t, err)
		}

		plan := r.Plan()
		require.Equal(t, 2, plan.Len())
		lines := plan.Lines()
		assert.Equal(t, "A", lines[0].ProductID)
		assert.Equal(t, 5, lines[0].Quantity)
		assert.Equal(t, 0, lines[0].Remaining())
		assert.Equal(t, 6, plan.TotalUnits())
		repo.AssertExpectations(t)
	})

	t.Run("combined demand over stock fails", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)
		repo.On("FindByID", ctx, "A").Return(testutil.NewTestProduct(t, "A", "1.00", 4), nil)

		r := NewStockLedger(repo).NewReservation()
		_, err := r.Add(ctx, "A", 3)
		require.NoError(t, err)
		_, err = r.Add(ctx, "A", 2)

		var insufficient *shared.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 4, insufficient.Available)
		assert.Equal(t, 5, insufficient.Requested)
		assert.Equal(t, 3, r.Plan().TotalUnits())
	})
}

func TestStockLedger_Apply(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockProductRepository)
	ledger := NewStockLedger(repo)
	repo.On("FindByID", ctx, "A").Return(testutil.NewTestProduct(t, "A", "1.00", 4), nil)
	r := ledger.NewReservation()
	_, err := r.Add(ctx, "A", 1)
	require.NoError(t, err)

	repo.On("ApplyStockPlan", ctx, r.Plan()).Return(shared.ErrStockConflict)

	assert.ErrorIs(t, ledger.Apply(ctx, r.Plan()), shared.ErrStockConflict)
}
