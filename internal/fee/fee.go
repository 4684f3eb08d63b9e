// Package fee computes the service fee added on top of a contribution.
package fee

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ServiceFee returns round(amount * pct / 100), rounded half up to a
// whole unit (XOF has no minor unit)
func ServiceFee(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(0)
}

// ClampPct bounds a user-chosen percentage to the configured [min, max]
func ClampPct(pct, min, max decimal.Decimal) decimal.Decimal {
	if pct.LessThan(min) {
		return min
	}
	if pct.GreaterThan(max) {
		return max
	}
	return pct
}
