package pool

import (
	"context"

	"multicollateral/core"
	"multicollateral/pkg/compound"

	"github.com/shopspring/decimal"
)

// kind per collateral kind behaviour
type kind interface {
	// decimals collateral amounts are truncated to
	decimals(pool *core.Pool) int32
	// annualRate borrow rate of currency
	annualRate(ctx context.Context, rates core.RateCurve, pool *core.Pool, currency string) (decimal.Decimal, error)
	// indexKey accumulator a loan of currency accrues on
	indexKey(currency string) string
	// indexKeys every accumulator of the pool
	indexKeys(pool *core.Pool) []string
	short() bool
}

func kindOf(k core.CollateralKind) kind {
	switch k {
	case core.KindToken:
		return tokenKind{}
	case core.KindShort:
		return shortKind{}
	default:
		return nativeKind{}
	}
}

type nativeKind struct{}

func (nativeKind) decimals(_ *core.Pool) int32 {
	return compound.Precision
}

func (nativeKind) annualRate(_ context.Context, _ core.RateCurve, pool *core.Pool, _ string) (decimal.Decimal, error) {
	return pool.InterestRate, nil
}

func (nativeKind) indexKey(_ string) string {
	return ""
}

func (nativeKind) indexKeys(_ *core.Pool) []string {
	return []string{""}
}

func (nativeKind) short() bool {
	return false
}

// tokenKind like native, but the collateral carries its own decimals
type tokenKind struct {
	nativeKind
}

func (tokenKind) decimals(pool *core.Pool) int32 {
	return pool.TokenDecimals
}

// shortKind the collateral is a stable synthetic, each borrowed currency
// accrues on its own utilization driven rate
type shortKind struct {
	nativeKind
}

func (shortKind) annualRate(ctx context.Context, rates core.RateCurve, _ *core.Pool, currency string) (decimal.Decimal, error) {
	return rates.ShortRate(ctx, currency)
}

func (shortKind) indexKey(currency string) string {
	return currency
}

func (shortKind) indexKeys(pool *core.Pool) []string {
	return append([]string(nil), pool.Currencies...)
}

func (shortKind) short() bool {
	return true
}
