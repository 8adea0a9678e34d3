// Package money holds the currency rounding rules shared by pricing code.
package money

import "github.com/shopspring/decimal"

// Scale is the number of decimal places kept for currency amounts.
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Round rounds half away from zero to Scale places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Percent returns pct percent of amount, unrounded.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// Clamp bounds d to [0, ceiling].
func Clamp(d, ceiling decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(d, ceiling)
}

// String formats d with exactly Scale decimal places.
func String(d decimal.Decimal) string {
	return Round(d).StringFixed(Scale)
}
