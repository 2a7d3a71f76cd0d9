package importapp

import (
	"context"
	"errors"
	"testing"

	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExportService_ExportProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("joins category names", func(t *testing.T) {
		products := new(testutil.MockProductRepository)
		categories := new(testutil.MockCategoryRepository)
		svc := NewExportService(products, categories, nil)

		shirt := testutil.NewTestProduct(t, "A-1", "12.00", 3)
		shirt.CategoryNumber = testutil.IntPtr(2)
		loose := testutil.NewTestProduct(t, "B-1", "1.5", 0)
		loose.CategoryNumber = nil
		products.On("ListAll", mock.Anything).Return([]catalog.Product{*shirt, *loose}, nil)
		categories.On("FindAll", mock.Anything, shared.Filter{}).
			Return([]catalog.Category{*testutil.NewTestCategory(t, 2, "Shirts")}, nil)

		records, err := svc.ExportProducts(ctx)

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "A-1", records[0].ProductID)
		assert.Equal(t, "2", records[0].CategoryNumber)
		assert.Equal(t, "Shirts", records[0].CategoryName)
		assert.Equal(t, "12.00", records[0].Price)
		assert.Empty(t, records[1].CategoryNumber)
		assert.Equal(t, "1.50", records[1].Price)
	})

	t.Run("empty catalog", func(t *testing.T) {
		products := new(testutil.MockProductRepository)
		categories := new(testutil.MockCategoryRepository)
		svc := NewExportService(products, categories, nil)
		products.On("ListAll", mock.Anything).Return([]catalog.Product{}, nil)
		categories.On("FindAll", mock.Anything, mock.Anything).Return([]catalog.Category{}, nil)

		records, err := svc.ExportProducts(ctx)

		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("repository failure", func(t *testing.T) {
		products := new(testutil.MockProductRepository)
		svc := NewExportService(products, new(testutil.MockCategoryRepository), nil)
		products.On("ListAll", mock.Anything).Return([]catalog.Product{}, errors.New("db down"))

		_, err := svc.ExportProducts(ctx)

		assert.ErrorContains(t, err, "failed to list products")
	})
}
