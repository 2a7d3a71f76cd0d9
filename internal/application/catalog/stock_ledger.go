package catalog

import (
	"context"

	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
)

// StockLedger checks requested quantities against stored stock.
// Reads go through the repository it was built with, so a ledger created
// inside a transaction scope sees that transaction.
type StockLedger struct {
	products catalog.ProductRepository
}

// NewStockLedger creates a StockLedger over products
func NewStockLedger(products catalog.ProductRepository) *StockLedger {
	return &StockLedger{products: products}
}

// NewReservation starts an empty reservation that callers fill one line at
// a time, interleaving their own checks.
func (l *StockLedger) NewReservation() *Reservation {
	return &Reservation{
		ledger:   l,
		plan:     catalog.NewStockPlan(),
		products: make(map[string]*catalog.Product),
	}
}

// Reservation builds a StockPlan line by line. Each product is read once
// and every line goes through catalog.Reserve against its combined demand.
type Reservation struct {
	ledger   *StockLedger
	plan     *catalog.StockPlan
	products map[string]*catalog.Product
}

// Add reserves quantity more units of productID and returns the product as
// it was read.
func (r *Reservation) Add(ctx context.Context, productID string, quantity int) (*catalog.Product, error) {
	if quantity <= 0 {
		return nil, shared.NewValidationError("quantity", "requested quantity must be positive")
	}
	p, ok := r.products[productID]
	if !ok {
		found, err := r.ledger.products.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		p = found
		r.products[productID] = p
	}
	if err := r.plan.Add(p, productID, quantity); err != nil {
		return nil, err
	}
	return p, nil
}

// Plan returns the accumulated decrements
func (r *Reservation) Plan() *catalog.StockPlan {
	return r.plan
}

// Apply writes the plan. Either every line is decremented or none is.
func (l *StockLedger) Apply(ctx context.Context, plan *catalog.StockPlan) error {
	return l.products.ApplyStockPlan(ctx, plan)
}
