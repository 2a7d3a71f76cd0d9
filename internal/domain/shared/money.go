package shared

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places stored for prices and totals
const MoneyScale = 4

// ExceedsMoneyScale reports whether d has non-zero digits past MoneyScale.
// Trailing zeros do not count: 1.50000 fits, 1.00005 does not.
func ExceedsMoneyScale(d decimal.Decimal) bool {
	return !d.Equal(d.Truncate(MoneyScale))
}
