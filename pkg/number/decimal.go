package number

import (
	"github.com/shopspring/decimal"
)

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

// DecimalOr parse v, fallback when v is empty or malformed
func DecimalOr(v string, fallback decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fallback
	}

	return d
}

func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

func Floor(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Floor().Shift(-precision)
}
