package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/application/event"
	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productServiceFixture struct {
	products   *testutil.MockProductRepository
	categories *testutil.MockCategoryRepository
	published  *testutil.RecordingPublisher
	service    *ProductService
}

func newProductServiceFixture() *productServiceFixture {
	f := &productServiceFixture{
		products:   new(testutil.MockProductRepository),
		categories: new(testutil.MockCategoryRepository),
		published:  testutil.NewRecordingPublisher(),
	}
	f.service = NewProductService(f.products, f.categories, event.NewDispatcher(f.published, nil), nil)
	return f
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product", func(t *testing.T) {
		f := newProductServiceFixture()
		f.products.On("ExistsByID", ctx, "SKU-1").Return(false, nil)
		f.categories.On("FindByNumber", ctx, 7).Return(testutil.NewTestCategory(t, 7, "Boots"), nil)
		f.products.On("Create", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := f.service.Create(ctx, CreateProductRequest{
			ID:             "SKU-1",
			Name:           " Trail Boot ",
			Brand:          "Acme",
			CategoryNumber: testutil.IntPtr(7),
			Size:           "42",
			Price:          decimal.RequireFromString("59.90"),
			Quantity:       3,
		})

		require.NoError(t, err)
		assert.Equal(t, "SKU-1", resp.ID)
		assert.Equal(t, "Trail Boot", resp.Name)
		assert.Equal(t, 7, *resp.CategoryNumber)
		assert.True(t, resp.Price.Equal(decimal.RequireFromString("59.90")))
		assert.Equal(t, []string{catalog.EventTypeProductCreated}, f.published.Types())
		f.products.AssertExpectations(t)
	})

	t.Run("duplicate id", func(t *testing.T) {
		f := newProductServiceFixture()
		f.products.On("ExistsByID", ctx, "SKU-1").Return(true, nil)

		_, err := f.service.Create(ctx, CreateProductRequest{ID: "SKU-1", Name: "X"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newProductServiceFixture()
		f.products.On("ExistsByID", ctx, "SKU-1").Return(false, nil)
		f.categories.On("FindByNumber", ctx, 99).Return(nil, shared.NewCategoryNotFoundError("99"))

		_, err := f.service.Create(ctx, CreateProductRequest{ID: "SKU-1", Name: "X", CategoryNumber: testutil.IntPtr(99)})

		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "category_number", verr.Field)
	})

	t.Run("negative price", func(t *testing.T) {
		f := newProductServiceFixture()
		f.products.On("ExistsByID", ctx, "SKU-1").Return(false, nil)

		_, err := f.service.Create(ctx, CreateProductRequest{ID: "SKU-1", Name: "X", Price: decimal.NewFromInt(-1)})

		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "price", verr.Field)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("applies given fields only", func(t *testing.T) {
		f := newProductServiceFixture()
		p := testutil.NewTestProduct(t, "SKU-1", "10.00", 5)
		f.products.On("FindByID", ctx, "SKU-1").Return(p, nil)
		f.products.On("Save", ctx, p).Return(nil)
		price := decimal.RequireFromString("12.50")

		resp, err := f.service.Update(ctx, "SKU-1", UpdateProductRequest{Price: &price})

		require.NoError(t, err)
		assert.True(t, resp.Price.Equal(price))
		assert.Equal(t, 5, resp.Quantity)
		assert.Equal(t, "Product SKU-1", resp.Name)
		assert.Equal(t, 2, resp.Version)
		assert.Equal(t, []string{catalog.EventTypeProductUpdated}, f.published.Types())
	})

	t.Run("clear category", func(t *testing.T) {
		f := newProductServiceFixture()
		p := testutil.NewTestProduct(t, "SKU-1", "10.00", 5)
		p.CategoryNumber = testutil.IntPtr(3)
		f.products.On("FindByID", ctx, "SKU-1").Return(p, nil)
		f.products.On("Save", ctx, p).Return(nil)

		resp, err := f.service.Update(ctx, "SKU-1", UpdateProductRequest{ClearCategory: true, CategoryNumber: testutil.IntPtr(4)})

		require.NoError(t, err)
		assert.Nil(t, resp.CategoryNumber)
		f.categories.AssertNotCalled(t, "FindByNumber", mock.Anything, mock.Anything)
	})

	t.Run("optimistic lock conflict", func(t *testing.T) {
		f := newProductServiceFixture()
		p := testutil.NewTestProduct(t, "SKU-1", "10.00", 5)
		f.products.On("FindByID", ctx, "SKU-1").Return(p, nil)
		f.products.On("Save", ctx, p).Return(shared.ErrConcurrencyConflict)

		_, err := f.service.Update(ctx, "SKU-1", UpdateProductRequest{Quantity: testutil.IntPtr(1)})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Empty(t, f.published.Events())
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("stocked product needs force", func(t *testing.T) {
		f := newProductServiceFixture()
		f.products.On("FindByID", ctx, "SKU-1").Return(testutil.NewTestProduct(t, "SKU-1", "10.00", 5), nil)

		err := f.service.Delete(ctx, "SKU-1", false)

		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		f.products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("forced delete", func(t *testing.T) {
		f := newProductServiceFixture()
		f.products.On("FindByID", ctx, "SKU-1").Return(testutil.NewTestProduct(t, "SKU-1", "10.00", 5), nil)
		f.products.On("Delete", ctx, "SKU-1").Return(nil)

		require.NoError(t, f.service.Delete(ctx, "SKU-1", true))
		assert.Equal(t, []string{catalog.EventTypeProductDeleted}, f.published.Types())
	})

	t.Run("empty product without force", func(t *testing.T) {
		f := newProductServiceFixture()
		f.products.On("FindByID", ctx, "SKU-1").Return(testutil.NewTestProduct(t, "SKU-1", "10.00", 0), nil)
		f.products.On("Delete", ctx, "SKU-1").Return(nil)

		assert.NoError(t, f.service.Delete(ctx, "SKU-1", false))
	})
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	f := newProductServiceFixture()
	inStock := true
	expected := shared.Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "id",
		OrderDir: "asc",
		Search:   "boot",
		Filters:  map[string]any{"category_number": 7, "in_stock": true},
	}
	f.products.On("FindAll", ctx, expected).Return([]catalog.Product{*testutil.NewTestProduct(t, "A", "1.00", 1)}, nil)
	f.products.On("Count", ctx, expected).Return(int64(1), nil)

	items, total, err := f.service.List(ctx, ProductListFilter{Search: "boot", CategoryNumber: testutil.IntPtr(7), InStock: &inStock})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].ID)
}
