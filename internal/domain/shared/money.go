package shared

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places money is stored and rendered with
const MoneyScale = 2

// IsWholeCents reports whether d carries no digits past MoneyScale.
// Trailing zeros are fine: 7.5000 passes, 0.004 does not.
func IsWholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}
