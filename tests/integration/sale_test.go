package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	appsales "github.com/sicua/backend/internal/application/sales"
	"github.com/sicua/backend/internal/domain/sales"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/internal/infrastructure/cache"
	"github.com/sicua/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	db       *TestDB
	products *persistence.GormProductRepository
	sales    *persistence.GormSaleRepository
	service  *appsales.SaleService
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	tdb := NewTestDB(t)
	products := persistence.NewGormProductRepository(tdb.DB)
	saleRepo := persistence.NewGormSaleRepository(tdb.DB)

	service := appsales.NewSaleService(persistence.NewGormTransactionScope(tdb.DB), saleRepo, nil, nil)
	service.SetIdempotencyStore(cache.NewInMemoryIdempotencyStore())
	service.SetMaxAttempts(20)

	return &saleFixture{db: tdb, products: products, sales: saleRepo, service: service}
}

func (f *saleFixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func (f *saleFixture) saleCount(t *testing.T) int64 {
	t.Helper()
	n, err := f.sales.Count(context.Background(), sales.SaleFilter{})
	require.NoError(t, err)
	return n
}

func buy(items ...appsales.SaleItemRequest) appsales.CreateSaleRequest {
	return appsales.CreateSaleRequest{Items: items}
}

func item(productID string, qty int) appsales.SaleItemRequest {
	return appsales.SaleItemRequest{ProductID: productID, Quantity: qty}
}

func TestSale_StoredWithItems(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	require.NoError(t, f.products.Create(ctx, newProduct(t, "P1", "Blue Shirt", nil, "10.25", 5)))
	require.NoError(t, f.products.Create(ctx, newProduct(t, "P2", "Cap", nil, "3", 2)))

	override := decimal.NewFromInt(1)
	req := buy(item("P1", 2), appsales.SaleItemRequest{ProductID: "P2", Quantity: 1, UnitPriceOverride: &override})
	clientID := "C-1"
	req.ClientID = &clientID

	resp, err := f.service.CreateSale(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "21.5", resp.Total.String())

	stored, err := f.sales.FindByID(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "P1", stored.Items[0].ProductID)
	assert.Equal(t, "Blue Shirt", stored.Items[0].Name)
	assert.True(t, stored.Items[1].PriceOverridden)
	assert.True(t, decimal.RequireFromString("21.5").Equal(stored.Total))
	assert.False(t, stored.Invoiced)

	assert.Equal(t, 3, f.stock(t, "P1"))
	assert.Equal(t, 1, f.stock(t, "P2"))
}

func TestSale_RejectedLeavesStockUntouched(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	require.NoError(t, f.products.Create(ctx, newProduct(t, "P1", "Blue Shirt", nil, "10", 5)))
	require.NoError(t, f.products.Create(ctx, newProduct(t, "P2", "Cap", nil, "3", 1)))

	_, err := f.service.CreateSale(ctx, buy(item("P1", 2), item("P2", 2)))
	var stockErr *shared.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "P2", stockErr.ProductID)

	assert.Equal(t, 5, f.stock(t, "P1"))
	assert.Equal(t, 1, f.stock(t, "P2"))
	assert.Zero(t, f.saleCount(t))
}

func TestSale_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	const stock = 5
	const buyers = 10
	require.NoError(t, f.products.Create(ctx, newProduct(t, "P1", "Blue Shirt", nil, "10", stock)))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CreateSale(ctx, buy(item("P1", 1)))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded)
	for _, err := range failures {
		var stockErr *shared.InsufficientStockError
		assert.True(t, errors.As(err, &stockErr), "unexpected failure: %v", err)
	}
	assert.Equal(t, 0, f.stock(t, "P1"))
	assert.Equal(t, int64(stock), f.saleCount(t))
}

func TestSale_IdempotencyKeyReplays(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	require.NoError(t, f.products.Create(ctx, newProduct(t, "P1", "Blue Shirt", nil, "10", 5)))

	req := buy(item("P1", 1))
	req.IdempotencyKey = "till-3-0001"

	first, err := f.service.CreateSale(ctx, req)
	require.NoError(t, err)

	var wg sync.WaitGroup
	ids := make([]string, 4)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := f.service.CreateSale(ctx, req)
			if err != nil {
				ids[i] = fmt.Sprintf("error: %v", err)
				return
			}
			ids[i] = resp.ID.String()
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, first.ID.String(), id)
	}
	assert.Equal(t, 4, f.stock(t, "P1"))
	assert.Equal(t, int64(1), f.saleCount(t))
}

func TestSale_InvoicingAndFilters(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	require.NoError(t, f.products.Create(ctx, newProduct(t, "P1", "Blue Shirt", nil, "10", 5)))

	first, err := f.service.CreateSale(ctx, buy(item("P1", 1)))
	require.NoError(t, err)
	_, err = f.service.CreateSale(ctx, buy(item("P1", 1)))
	require.NoError(t, err)

	invoiced, err := f.service.MarkInvoiced(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, invoiced.Invoiced)
	require.NotNil(t, invoiced.InvoicedAt)

	again, err := f.service.MarkInvoiced(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, invoiced.Version, again.Version)

	yes, no := true, false
	list, total, err := f.service.ListSales(ctx, appsales.SaleListFilter{Invoiced: &yes})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	_, total, err = f.service.ListSales(ctx, appsales.SaleListFilter{Invoiced: &no})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
