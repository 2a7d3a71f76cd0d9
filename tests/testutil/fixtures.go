package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/stretchr/testify/require"
)

// NewTestProduct builds a valid product with no pending events.
func NewTestProduct(t *testing.T, id string, price string, quantity int) *catalog.Product {
	t.Helper()

	p, err := catalog.NewProduct(id, catalog.ProductDetails{
		Name:     "Product " + id,
		Brand:    "Acme",
		Size:     "M",
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	})
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

// NewTestCategory builds a valid category with no pending events.
func NewTestCategory(t *testing.T, number int, name string) *catalog.Category {
	t.Helper()

	c, err := catalog.NewCategory(number, name)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// StrPtr returns a pointer to v.
func StrPtr(v string) *string {
	return &v
}
