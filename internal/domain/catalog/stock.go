package catalog

import (
	"github.com/sicua/backend/internal/domain/shared"
)

// Reserve checks that p can supply quantity units and returns a copy with
// the quantity taken out. p itself is left untouched; persisting the copy
// is up to the caller.
func Reserve(p *Product, productID string, quantity int) (*Product, error) {
	if p == nil {
		return nil, shared.NewProductNotFoundError(productID)
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("quantity", "requested quantity must be positive")
	}
	if p.Quantity < quantity {
		return nil, shared.NewInsufficientStockError(p.ID, quantity, p.Quantity)
	}

	reserved := *p
	reserved.Quantity -= quantity
	reserved.Version++
	reserved.Touch()
	reserved.ClearDomainEvents()
	return &reserved, nil
}

// StockDecrement is one line of a StockPlan.
// ExpectedQuantity is the stock observed when the line was validated; the
// decrement only applies if the stored quantity still equals it.
type StockDecrement struct {
	ProductID        string
	Quantity         int
	ExpectedQuantity int
}

// Remaining returns the stock left once the decrement is applied
func (d StockDecrement) Remaining() int {
	return d.ExpectedQuantity - d.Quantity
}

// StockPlan accumulates the decrements of one sale so they can be applied
// as a single unit. Lines keep the order of first appearance; repeated
// products are merged and validated against their combined demand.
type StockPlan struct {
	lines []StockDecrement
	index map[string]int
}

// NewStockPlan creates an empty plan
func NewStockPlan() *StockPlan {
	return &StockPlan{index: make(map[string]int)}
}

// Add reserves quantity units of p on top of whatever the plan already
// holds for the same product.
func (s *StockPlan) Add(p *Product, productID string, quantity int) error {
	if quantity <= 0 {
		return shared.NewValidationError("quantity", "requested quantity must be positive")
	}
	if p == nil {
		return shared.NewProductNotFoundError(productID)
	}

	i, seen := s.index[p.ID]
	total := quantity
	if seen {
		total += s.lines[i].Quantity
	}
	if _, err := Reserve(p, p.ID, total); err != nil {
		return err
	}

	if seen {
		s.lines[i].Quantity = total
		return nil
	}
	s.index[p.ID] = len(s.lines)
	s.lines = append(s.lines, StockDecrement{
		ProductID:        p.ID,
		Quantity:         quantity,
		ExpectedQuantity: p.Quantity,
	})
	return nil
}

// Lines returns the decrements in order
func (s *StockPlan) Lines() []StockDecrement {
	out := make([]StockDecrement, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of distinct products in the plan
func (s *StockPlan) Len() int {
	return len(s.lines)
}

// TotalUnits returns the sum of all decrements
func (s *StockPlan) TotalUnits() int {
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}
