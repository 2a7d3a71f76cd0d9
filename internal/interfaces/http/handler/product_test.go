package handler

import (
	"net/http"
	"testing"

	appcatalog "github.com/sicua/backend/internal/application/catalog"
	"github.com/sicua/backend/internal/interfaces/http/dto"
	"github.com/sicua/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductHandler_CreateAndGet(t *testing.T) {
	env := newStoreEnv(t)
	env.createCategory(t, 3, "Shirts")

	created := env.createProduct(t, "SH-1", "Blue Shirt", testutil.IntPtr(3), "19.90", 5)
	assert.Equal(t, "SH-1", created.ID)
	assert.Equal(t, "19.9", created.Price.String())
	require.NotNil(t, created.CategoryNumber)
	assert.Equal(t, 3, *created.CategoryNumber)

	w := env.do(t, http.MethodGet, "/api/v1/products/SH-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := data[appcatalog.ProductResponse](t, w)
	assert.Equal(t, "Blue Shirt", got.Name)
	assert.Equal(t, 5, got.Quantity)

	w = env.do(t, http.MethodGet, "/api/v1/products/by-name/Blue%20Shirt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SH-1", data[appcatalog.ProductResponse](t, w).ID)
}

func TestProductHandler_CreateErrors(t *testing.T) {
	env := newStoreEnv(t)
	env.createProduct(t, "DUP", "First", nil, "1", 1)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing name",
			body:       map[string]any{"id": "X-1", "price": "1"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "negative price",
			body:       map[string]any{"id": "X-2", "name": "Bad", "price": "-1"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "unknown category",
			body:       map[string]any{"id": "X-3", "name": "Orphan", "price": "1", "category_number": 42},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "duplicate id",
			body:       map[string]any{"id": "DUP", "name": "Second", "price": "1"},
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/products", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestProductHandler_NotFound(t *testing.T) {
	env := newStoreEnv(t)

	for _, path := range []string{"/api/v1/products/NOPE", "/api/v1/products/by-name/Nothing"} {
		w := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, dto.ErrCodeProductNotFound, decodeResponse(t, w).Error.Code)
	}
}

func TestProductHandler_List(t *testing.T) {
	env := newStoreEnv(t)
	env.createCategory(t, 1, "Tools")
	env.createProduct(t, "A", "Hammer", testutil.IntPtr(1), "10", 2)
	env.createProduct(t, "B", "Saw", testutil.IntPtr(1), "12", 0)
	env.createProduct(t, "C", "Tape", nil, "3", 9)

	w := env.do(t, http.MethodGet, "/api/v1/products?page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(3), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.PageSize)
	assert.Len(t, data[[]appcatalog.ProductResponse](t, w), 2)

	w = env.do(t, http.MethodGet, "/api/v1/products?category_number=1&in_stock=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := data[[]appcatalog.ProductResponse](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, "A", listed[0].ID)

	w = env.do(t, http.MethodGet, "/api/v1/products?order_dir=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_Update(t *testing.T) {
	env := newStoreEnv(t)
	env.createCategory(t, 2, "Hats")
	env.createProduct(t, "H-1", "Cap", testutil.IntPtr(2), "8", 1)

	w := env.do(t, http.MethodPut, "/api/v1/products/H-1", map[string]any{"price": "9.5", "quantity": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := data[appcatalog.ProductResponse](t, w)
	assert.Equal(t, "9.5", updated.Price.String())
	assert.Equal(t, 4, updated.Quantity)
	assert.Equal(t, "Cap", updated.Name)

	w = env.do(t, http.MethodPut, "/api/v1/products/H-1", map[string]any{"clear_category": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, data[appcatalog.ProductResponse](t, w).CategoryNumber)

	w = env.do(t, http.MethodPut, "/api/v1/products/NOPE", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_Delete(t *testing.T) {
	env := newStoreEnv(t)
	env.createProduct(t, "S-1", "Stocked", nil, "1", 3)
	env.createProduct(t, "E-1", "Empty", nil, "1", 0)

	w := env.do(t, http.MethodDelete, "/api/v1/products/S-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/products/S-1?force=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/products/S-1?force=true", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/products/E-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/products/S-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
