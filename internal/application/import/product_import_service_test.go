package importapp

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	appcatalog "github.com/sicua/backend/internal/application/catalog"
	"github.com/sicua/backend/internal/application/event"
	"github.com/sicua/backend/internal/domain/bulk"
	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type importFixture struct {
	products   *testutil.MockProductRepository
	categories *testutil.MockCategoryRepository
	published  *testutil.RecordingPublisher
	service    *ProductImportService
}

func newImportFixture() *importFixture {
	f := &importFixture{
		products:   new(testutil.MockProductRepository),
		categories: new(testutil.MockCategoryRepository),
		published:  testutil.NewRecordingPublisher(),
	}
	events := event.NewDispatcher(f.published, nil)
	resolver := appcatalog.NewCategoryResolver(f.categories, events, nil)
	f.service = NewProductImportService(f.products, resolver, events, nil)
	return f
}

func validRow(id string, category int) bulk.RawRow {
	price := decimal.RequireFromString("19.99")
	qty := 4
	return bulk.RawRow{
		ProductID:      testutil.StrPtr(id),
		Name:           "Item " + id,
		CategoryNumber: &category,
		Price:          &price,
		Quantity:       &qty,
	}
}

func TestImportProducts_ExistingCategoryNameIgnored(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture()
	f.categories.On("FindByNumber", mock.Anything, 7).Return(testutil.NewTestCategory(t, 7, "Boots"), nil)
	f.products.On("FindByID", mock.Anything, "SH-1").Return(nil, shared.NewProductNotFoundError("SH-1"))
	f.products.On("Create", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
		return p.CategoryNumber != nil && *p.CategoryNumber == 7
	})).Return(nil)

	row := validRow("SH-1", 7)
	row.CategoryName = testutil.StrPtr("Shoes")

	result := f.service.ImportProducts(ctx, []bulk.RawRow{row})

	assert.Equal(t, 1, result.TotalProcessed)
	assert.Equal(t, 1, result.SuccessfulImports)
	assert.Equal(t, 0, result.CategoriesCreated)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "row 1")
	assert.Contains(t, result.Warnings[0], "Boots")
	assert.Contains(t, result.Warnings[0], "Shoes")
	f.categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.products.AssertExpectations(t)
}

func TestImportProducts_MalformedRowIsReportedAndSkipped(t *testing.T) {
	ctx := context.Background()

	for k := 1; k <= 4; k++ {
		t.Run(fmt.Sprintf("row %d malformed", k), func(t *testing.T) {
			f := newImportFixture()
			f.categories.On("FindByNumber", mock.Anything, 1).Return(testutil.NewTestCategory(t, 1, "General"), nil)
			f.products.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.NewProductNotFoundError("x"))
			f.products.On("Create", mock.Anything, mock.Anything).Return(nil)

			rows := make([]bulk.RawRow, 4)
			for i := range rows {
				rows[i] = validRow(fmt.Sprintf("SKU-%d", i+1), 1)
			}
			rows[k-1].Price = nil

			result := f.service.ImportProducts(ctx, rows)

			assert.Equal(t, 4, result.TotalProcessed)
			assert.Equal(t, 3, result.SuccessfulImports)
			assert.Equal(t, 1, result.Rejected())
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], fmt.Sprintf("row %d", k))
			assert.Equal(t, bulk.ImportStatusPartial, result.Outcome())
			f.products.AssertNumberOfCalls(t, "Create", 3)
		})
	}
}

func TestImportProducts_RequiredFields(t *testing.T) {
	ctx := context.Background()
	negative := decimal.NewFromInt(-2)
	minusOne := -1
	zero := 0

	tests := []struct {
		name   string
		mutate func(r *bulk.RawRow)
		want   string
	}{
		{"blank name", func(r *bulk.RawRow) { r.Name = "  " }, "name is required"},
		{"missing price", func(r *bulk.RawRow) { r.Price = nil }, "price is required"},
		{"negative price", func(r *bulk.RawRow) { r.Price = &negative }, "price -2 is negative"},
		{"missing category", func(r *bulk.RawRow) { r.CategoryNumber = nil }, "category number is required"},
		{"zero category", func(r *bulk.RawRow) { r.CategoryNumber = &zero }, "not positive"},
		{"missing quantity", func(r *bulk.RawRow) { r.Quantity = nil }, "quantity is required"},
		{"negative quantity", func(r *bulk.RawRow) { r.Quantity = &minusOne }, "quantity -1 is negative"},
		{"unreadable cell", func(r *bulk.RawRow) { r.AddProblem("price: \"abc\" is not a number") }, "is not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImportFixture()
			row := validRow("A", 1)
			tt.mutate(&row)

			result := f.service.ImportProducts(ctx, []bulk.RawRow{row})

			assert.Equal(t, 1, result.TotalProcessed)
			assert.Equal(t, 0, result.SuccessfulImports)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], "row 1: ")
			assert.Contains(t, result.Errors[0], tt.want)
			assert.Equal(t, bulk.ImportStatusFailed, result.Outcome())
			f.categories.AssertNotCalled(t, "FindByNumber", mock.Anything, mock.Anything)
		})
	}
}

func TestImportProducts_CreatesMissingCategoryOnce(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture()
	hats := testutil.NewTestCategory(t, 5, "Hats")
	f.categories.On("FindByNumber", mock.Anything, 5).Return(nil, shared.NewCategoryNotFoundError("5")).Once()
	f.categories.On("FindByName", mock.Anything, "Hats").Return(nil, shared.NewCategoryNotFoundError("Hats"))
	f.categories.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.categories.On("FindByNumber", mock.Anything, 5).Return(hats, nil)
	f.products.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.NewProductNotFoundError("x"))
	f.products.On("Create", mock.Anything, mock.Anything).Return(nil)

	first := validRow("H1", 5)
	first.CategoryName = testutil.StrPtr("Hats")
	second := validRow("H2", 5)
	second.CategoryName = testutil.StrPtr("hats")

	result := f.service.ImportProducts(ctx, []bulk.RawRow{first, second})

	assert.Equal(t, 2, result.SuccessfulImports)
	assert.Equal(t, 1, result.CategoriesCreated)
	assert.Empty(t, result.Warnings)
	assert.Contains(t, result.Summary, "1 new categories")
}

func TestImportProducts_CategoryFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown category without name", func(t *testing.T) {
		f := newImportFixture()
		f.categories.On("FindByNumber", mock.Anything, 9).Return(nil, shared.NewCategoryNotFoundError("9"))

		result := f.service.ImportProducts(ctx, []bulk.RawRow{validRow("A", 9)})

		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "row 1: category 9 does not exist")
		assert.Equal(t, 0, result.CategoriesCreated)
	})

	t.Run("name taken by another number", func(t *testing.T) {
		f := newImportFixture()
		f.categories.On("FindByNumber", mock.Anything, 9).Return(nil, shared.NewCategoryNotFoundError("9"))
		f.categories.On("FindByName", mock.Anything, "Boots").Return(testutil.NewTestCategory(t, 7, "Boots"), nil)
		row := validRow("A", 9)
		row.CategoryName = testutil.StrPtr("Boots")

		result := f.service.ImportProducts(ctx, []bulk.RawRow{row})

		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "already in use")
		assert.Equal(t, 0, result.SuccessfulImports)
	})
}

func TestImportProducts_RejectedRowCreatesNoCategory(t *testing.T) {
	ctx := context.Background()
	tooPrecise := decimal.RequireFromString("1.00005")

	tests := []struct {
		name   string
		mutate func(r *bulk.RawRow)
		want   string
	}{
		{"bad product id", func(r *bulk.RawRow) { r.ProductID = testutil.StrPtr("bad id!") }, "product id can only contain"},
		{"long name", func(r *bulk.RawRow) { r.Name = strings.Repeat("n", 201) }, "name cannot exceed 200 characters"},
		{"long brand", func(r *bulk.RawRow) { r.Brand = testutil.StrPtr(strings.Repeat("b", 101)) }, "brand cannot exceed"},
		{"long size", func(r *bulk.RawRow) { r.Size = testutil.StrPtr(strings.Repeat("s", 51)) }, "size cannot exceed"},
		{"price past four decimals", func(r *bulk.RawRow) { r.Price = &tooPrecise }, "more than 4 decimal places"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImportFixture()
			row := validRow("A", 9)
			row.CategoryName = testutil.StrPtr("Hats")
			tt.mutate(&row)

			result := f.service.ImportProducts(ctx, []bulk.RawRow{row})

			assert.Equal(t, 1, result.TotalProcessed)
			assert.Equal(t, 0, result.SuccessfulImports)
			assert.Equal(t, 0, result.CategoriesCreated)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], "row 1: ")
			assert.Contains(t, result.Errors[0], tt.want)
			f.categories.AssertNotCalled(t, "FindByNumber", mock.Anything, mock.Anything)
			f.categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestImportProducts_UpdatesExistingProduct(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture()
	existing := testutil.NewTestProduct(t, "A", "5.00", 1)
	existing.Brand = "Old Brand"
	f.categories.On("FindByNumber", mock.Anything, 1).Return(testutil.NewTestCategory(t, 1, "General"), nil)
	f.products.On("FindByID", mock.Anything, "A").Return(existing, nil)
	f.products.On("Save", mock.Anything, existing).Return(nil)

	result := f.service.ImportProducts(ctx, []bulk.RawRow{validRow("A", 1)})

	assert.Equal(t, 1, result.SuccessfulImports)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, "Item A", existing.Name)
	assert.Equal(t, "Old Brand", existing.Brand)
	assert.Equal(t, 4, existing.Quantity)
	assert.Equal(t, []string{catalog.EventTypeProductUpdated}, f.published.Types())
	f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportProducts_GeneratesMissingID(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture()
	f.service.newID = func() string { return "P-FIXED" }
	f.categories.On("FindByNumber", mock.Anything, 1).Return(testutil.NewTestCategory(t, 1, "General"), nil)
	f.products.On("ExistsByID", mock.Anything, "P-FIXED").Return(false, nil)
	f.products.On("FindByID", mock.Anything, "P-FIXED").Return(nil, shared.NewProductNotFoundError("P-FIXED"))
	f.products.On("Create", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
		return p.ID == "P-FIXED"
	})).Return(nil)

	row := validRow("", 1)
	row.ProductID = nil

	result := f.service.ImportProducts(ctx, []bulk.RawRow{row})

	assert.Equal(t, 1, result.SuccessfulImports)
	f.products.AssertExpectations(t)
}

func TestImportProducts_GeneratedIDSkipsTakenOnes(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture()
	ids := []string{"P-TAKEN", "P-FREE"}
	f.service.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	f.categories.On("FindByNumber", mock.Anything, 1).Return(testutil.NewTestCategory(t, 1, "General"), nil)
	f.products.On("ExistsByID", mock.Anything, "P-TAKEN").Return(true, nil)
	f.products.On("ExistsByID", mock.Anything, "P-FREE").Return(false, nil)
	f.products.On("FindByID", mock.Anything, "P-FREE").Return(nil, shared.NewProductNotFoundError("P-FREE"))
	f.products.On("Create", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
		return p.ID == "P-FREE"
	})).Return(nil)

	row := validRow("", 1)
	row.ProductID = nil

	result := f.service.ImportProducts(ctx, []bulk.RawRow{row})

	assert.Equal(t, 1, result.Created)
	f.products.AssertExpectations(t)
}

func TestImportProducts_EmptyInputAndLineNumbers(t *testing.T) {
	ctx := context.Background()

	t.Run("no rows", func(t *testing.T) {
		f := newImportFixture()

		result := f.service.ImportProducts(ctx, nil)

		assert.Equal(t, 0, result.TotalProcessed)
		assert.Equal(t, bulk.ImportStatusCompleted, result.Outcome())
		assert.NotEmpty(t, result.Summary)
	})

	t.Run("explicit line numbers are used", func(t *testing.T) {
		f := newImportFixture()
		row := validRow("A", 1)
		row.Line = 42
		row.Name = ""

		result := f.service.ImportProducts(ctx, []bulk.RawRow{row})

		assert.Equal(t, "row 42: name is required", result.Errors[0])
	})

	t.Run("store errors are row errors", func(t *testing.T) {
		f := newImportFixture()
		f.categories.On("FindByNumber", mock.Anything, 1).Return(testutil.NewTestCategory(t, 1, "General"), nil)
		f.products.On("FindByID", mock.Anything, "A").Return(nil, assert.AnError)

		result := f.service.ImportProducts(ctx, []bulk.RawRow{validRow("A", 1)})

		assert.Equal(t, 1, result.Rejected())
		assert.Contains(t, result.Errors[0], "unexpected error")
	})

	t.Run("cancelled context rejects remaining rows", func(t *testing.T) {
		f := newImportFixture()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		result := f.service.ImportProducts(cctx, []bulk.RawRow{validRow("A", 1), validRow("B", 1)})

		assert.Equal(t, 2, result.TotalProcessed)
		assert.Equal(t, 2, result.Rejected())
	})
}

func TestGenerateProductID(t *testing.T) {
	id := generateProductID()
	assert.Len(t, id, len(GeneratedIDPrefix)+10)
	assert.NotEqual(t, id, generateProductID())
	_, err := catalog.NewProduct(id, catalog.ProductDetails{Name: "x"})
	assert.NoError(t, err)
}
