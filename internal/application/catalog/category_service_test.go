package catalog

import (
	"context"
	"testing"

	"github.com/sicua/backend/internal/application/event"
	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type categoryServiceFixture struct {
	categories *testutil.MockCategoryRepository
	products   *testutil.MockProductRepository
	published  *testutil.RecordingPublisher
	service    *CategoryService
}

func newCategoryServiceFixture() *categoryServiceFixture {
	f := &categoryServiceFixture{
		categories: new(testutil.MockCategoryRepository),
		products:   new(testutil.MockProductRepository),
		published:  testutil.NewRecordingPublisher(),
	}
	events := event.NewDispatcher(f.published, nil)
	resolver := NewCategoryResolver(f.categories, events, nil)
	f.service = NewCategoryService(f.categories, f.products, resolver, events, nil)
	return f
}

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("without number takes the next one", func(t *testing.T) {
		f := newCategoryServiceFixture()
		f.categories.On("MaxNumber", ctx).Return(4, nil)
		f.categories.On("FindByNumber", ctx, 5).Return(nil, shared.NewCategoryNotFoundError("5"))
		f.categories.On("FindByName", ctx, "Socks").Return(nil, shared.NewCategoryNotFoundError("Socks"))
		f.categories.On("Create", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

		resp, err := f.service.Create(ctx, CreateCategoryRequest{Name: "Socks"})

		require.NoError(t, err)
		assert.Equal(t, 5, resp.Number)
		assert.Equal(t, []string{catalog.EventTypeCategoryCreated}, f.published.Types())
	})

	t.Run("explicit number already used", func(t *testing.T) {
		f := newCategoryServiceFixture()
		f.categories.On("FindByNumber", ctx, 2).Return(testutil.NewTestCategory(t, 2, "Hats"), nil)

		_, err := f.service.Create(ctx, CreateCategoryRequest{Number: testutil.IntPtr(2), Name: "Caps"})

		var dup *shared.DuplicateNumberError
		require.ErrorAs(t, err, &dup)
		f.categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("name conflict ignores case", func(t *testing.T) {
		f := newCategoryServiceFixture()
		f.categories.On("FindByNumber", ctx, 3).Return(nil, shared.NewCategoryNotFoundError("3"))
		f.categories.On("FindByName", ctx, "HATS").Return(testutil.NewTestCategory(t, 2, "Hats"), nil)

		_, err := f.service.Create(ctx, CreateCategoryRequest{Number: testutil.IntPtr(3), Name: "HATS"})

		var conflict *shared.NameConflictError
		require.ErrorAs(t, err, &conflict)
	})
}

func TestCategoryService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("renames", func(t *testing.T) {
		f := newCategoryServiceFixture()
		c := testutil.NewTestCategory(t, 2, "Hats")
		f.categories.On("FindByID", ctx, c.ID).Return(c, nil)
		f.categories.On("FindByName", ctx, "Caps").Return(nil, shared.NewCategoryNotFoundError("Caps"))
		f.categories.On("Save", ctx, c).Return(nil)

		resp, err := f.service.Update(ctx, c.ID, UpdateCategoryRequest{Name: "Caps"})

		require.NoError(t, err)
		assert.Equal(t, "Caps", resp.Name)
		assert.Equal(t, 2, resp.Number)
		assert.Equal(t, []string{catalog.EventTypeCategoryRenamed}, f.published.Types())
	})

	t.Run("case change of own name is allowed", func(t *testing.T) {
		f := newCategoryServiceFixture()
		c := testutil.NewTestCategory(t, 2, "Hats")
		f.categories.On("FindByID", ctx, c.ID).Return(c, nil)
		f.categories.On("FindByName", ctx, "HATS").Return(c, nil)
		f.categories.On("Save", ctx, c).Return(nil)

		resp, err := f.service.Update(ctx, c.ID, UpdateCategoryRequest{Name: "HATS"})

		require.NoError(t, err)
		assert.Equal(t, "HATS", resp.Name)
	})

	t.Run("unchanged name skips save", func(t *testing.T) {
		f := newCategoryServiceFixture()
		c := testutil.NewTestCategory(t, 2, "Hats")
		f.categories.On("FindByID", ctx, c.ID).Return(c, nil)
		f.categories.On("FindByName", ctx, "Hats").Return(c, nil)

		resp, err := f.service.Update(ctx, c.ID, UpdateCategoryRequest{Name: "Hats"})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Version)
		f.categories.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.published.Types())
	})
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects category in use", func(t *testing.T) {
		f := newCategoryServiceFixture()
		c := testutil.NewTestCategory(t, 2, "Hats")
		f.categories.On("FindByID", ctx, c.ID).Return(c, nil)
		f.products.On("CountByCategoryNumber", ctx, 2).Return(int64(3), nil)

		err := f.service.Delete(ctx, c.ID)

		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		f.categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes unused category", func(t *testing.T) {
		f := newCategoryServiceFixture()
		c := testutil.NewTestCategory(t, 2, "Hats")
		f.categories.On("FindByID", ctx, c.ID).Return(c, nil)
		f.products.On("CountByCategoryNumber", ctx, 2).Return(int64(0), nil)
		f.categories.On("Delete", ctx, c.ID).Return(nil)

		require.NoError(t, f.service.Delete(ctx, c.ID))
		assert.Equal(t, []string{catalog.EventTypeCategoryDeleted}, f.published.Types())
	})
}

func TestCategoryService_NextNumber(t *testing.T) {
	ctx := context.Background()
	f := newCategoryServiceFixture()
	f.categories.On("MaxNumber", ctx).Return(0, nil)

	resp, err := f.service.NextNumber(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Number)
}
