package compound

import (
	"testing"

	"multicollateral/core"
	"multicollateral/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCollateralRatio(t *testing.T) {
	assert.Equal(t, "2", CollateralRatio(decimal.NewFromInt(200), decimal.NewFromInt(100)).String())
	assert.True(t, CollateralRatio(decimal.NewFromInt(200), decimal.Zero).Equal(InfiniteRatio))
	assert.Equal(t, "0.333333333333333333", CollateralRatio(decimal.NewFromInt(1), decimal.NewFromInt(3)).String())
}

func TestIsHealthy(t *testing.T) {
	minRatio := number.Decimal("1.5")
	assert.True(t, IsHealthy(decimal.NewFromInt(150), decimal.NewFromInt(100), minRatio))
	assert.False(t, IsHealthy(number.Decimal("149.999999999999999999"), decimal.NewFromInt(100), minRatio))
	assert.True(t, IsHealthy(decimal.Zero, decimal.Zero, minRatio))
}

func TestMaxBorrowable(t *testing.T) {
	assert.Equal(t, "100", MaxBorrowable(decimal.NewFromInt(150), number.Decimal("1.5")).String())
	assert.True(t, MaxBorrowable(decimal.Zero, number.Decimal("1.5")).IsZero())
}

func TestLiquidationAmount(t *testing.T) {
	c := number.Decimal("1.2")
	penalty := number.Decimal("0.05")

	t.Run("healthy", func(t *testing.T) {
		amount := LiquidationAmount(decimal.NewFromInt(100), decimal.NewFromInt(120), c, penalty)
		assert.True(t, amount.IsZero())
		amount = LiquidationAmount(decimal.NewFromInt(100), decimal.NewFromInt(200), c, penalty)
		assert.True(t, amount.IsZero())
	})

	t.Run("restores target ratio", func(t *testing.T) {
		// 200 of collateral value against 100 debt, then the price drops 45%
		debt := decimal.NewFromInt(100)
		value := decimal.NewFromInt(200).Mul(number.Decimal("0.55"))
		assert.False(t, IsHealthy(value, debt, c))

		amount := LiquidationAmount(debt, value, c, penalty)
		assert.Equal(t, "66.666666666666666667", amount.String())

		restDebt := debt.Sub(amount)
		restValue := value.Sub(amount.Mul(One.Add(penalty)))
		assert.True(t, IsHealthy(restValue, restDebt, c))

		ratio := CollateralRatio(restValue, restDebt)
		assert.True(t, ratio.Sub(c).Abs().LessThan(number.Decimal("0.000000000000001")), "ratio %s", ratio)
	})

	t.Run("same result as the reciprocal form", func(t *testing.T) {
		debt := decimal.NewFromInt(1000)
		value := decimal.NewFromInt(1100)
		r := One.DivRound(c, 40)

		reciprocal := debt.Sub(value.Mul(r)).DivRound(One.Sub(One.Add(penalty).Mul(r)), 40)
		amount := LiquidationAmount(debt, value, c, penalty)
		assert.True(t, amount.Sub(reciprocal).Abs().LessThan(number.Decimal("0.000000000001")))
	})

	t.Run("underwater closes fully", func(t *testing.T) {
		debt := decimal.NewFromInt(100)
		amount := LiquidationAmount(debt, decimal.NewFromInt(90), c, penalty)
		assert.True(t, amount.Equal(debt))
	})

	t.Run("no debt", func(t *testing.T) {
		assert.True(t, LiquidationAmount(decimal.Zero, decimal.NewFromInt(90), c, penalty).IsZero())
	})
}

func TestCollateralRedeemed(t *testing.T) {
	penalty := number.Decimal("0.1")

	t.Run("same currency", func(t *testing.T) {
		assert.Equal(t, "110", CollateralRedeemedSame(decimal.NewFromInt(100), penalty, 18).String())
	})

	t.Run("cross currency", func(t *testing.T) {
		// 100 sUSD repaid, collateral worth 2000 each
		got := CollateralRedeemed(decimal.NewFromInt(100), penalty, One, decimal.NewFromInt(2000), 18)
		assert.Equal(t, "0.055", got.String())
	})

	t.Run("truncates to token decimals", func(t *testing.T) {
		got := CollateralRedeemed(decimal.NewFromInt(1), decimal.Zero, One, decimal.NewFromInt(3), 6)
		assert.Equal(t, "0.333333", got.String())
	})

	t.Run("bad rate", func(t *testing.T) {
		assert.True(t, CollateralRedeemed(decimal.NewFromInt(1), penalty, One, decimal.Zero, 18).IsZero())
	})
}

func TestValidatePoolParams(t *testing.T) {
	valid := func() *core.Pool {
		return &core.Pool{
			ID:                 "eth",
			Kind:               core.KindNative,
			CollateralCurrency: "ETH",
			Currencies:         []string{"sUSD"},
			MinCollateralRatio: number.Decimal("1.5"),
			LiquidationPenalty: number.Decimal("0.1"),
			PenaltyFeeShare:    number.Decimal("0.5"),
			IssueFeeRate:       number.Decimal("0.005"),
			InterestRate:       number.Decimal("0.05"),
		}
	}

	assert.NoError(t, ValidatePoolParams(valid()))

	cases := map[string]func(p *core.Pool){
		"ratio not above one":   func(p *core.Pool) { p.MinCollateralRatio = One },
		"penalty eats margin":   func(p *core.Pool) { p.LiquidationPenalty = number.Decimal("0.5") },
		"negative penalty":      func(p *core.Pool) { p.LiquidationPenalty = number.Decimal("-0.1") },
		"fee share above one":   func(p *core.Pool) { p.PenaltyFeeShare = number.Decimal("1.1") },
		"issue fee takes all":   func(p *core.Pool) { p.IssueFeeRate = One },
		"unknown kind":          func(p *core.Pool) { p.Kind = "bond" },
		"no currencies":         func(p *core.Pool) { p.Currencies = nil },
		"negative delay":        func(p *core.Pool) { p.InteractionDelay = -1 },
		"token decimals":        func(p *core.Pool) { p.Kind = core.KindToken; p.TokenDecimals = 30 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid()
			mutate(p)
			assert.ErrorIs(t, ValidatePoolParams(p), core.ErrInvalidPoolParams)
		})
	}
}
