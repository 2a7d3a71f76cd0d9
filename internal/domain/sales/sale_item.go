package sales

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/shared"
)

// SaleItem is a snapshot of a product taken when the sale was recorded.
// Later product edits do not touch it.
type SaleItem struct {
	LineNo          int
	ProductID       string
	Name            string
	UnitPrice       decimal.Decimal
	Quantity        int
	Subtotal        decimal.Decimal
	PriceOverridden bool
}

// NewSaleItem snapshots one cart line. Subtotal is unitPrice × quantity.
func NewSaleItem(productID, name string, unitPrice decimal.Decimal, quantity int) (SaleItem, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return SaleItem{}, shared.NewValidationError("product_id", "product id is required")
	}
	if quantity <= 0 {
		return SaleItem{}, shared.NewValidationError("quantity", "quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return SaleItem{}, shared.NewValidationError("unit_price", "unit price cannot be negative")
	}
	if shared.ExceedsMoneyScale(unitPrice) {
		return SaleItem{}, shared.NewValidationError("unit_price", "unit price cannot have more than 4 decimal places")
	}

	return SaleItem{
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}
