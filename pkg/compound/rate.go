package compound

import (
	"github.com/shopspring/decimal"
)

// Utilization shorted / issued, clamped to [0, 1]
func Utilization(shorted, issued decimal.Decimal) decimal.Decimal {
	if !issued.IsPositive() || !shorted.IsPositive() {
		return decimal.Zero
	}

	u := shorted.DivRound(issued, InternalPrecision).Truncate(Precision)
	if u.GreaterThan(One) {
		return One
	}

	return u
}

// ShortRate annual short rate = base + slope * utilization
func ShortRate(baseRate, slope, utilization decimal.Decimal) decimal.Decimal {
	u := utilization
	if u.IsNegative() {
		u = decimal.Zero
	} else if u.GreaterThan(One) {
		u = One
	}

	return baseRate.Add(slope.Mul(u)).Truncate(Precision)
}
