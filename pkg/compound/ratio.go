package compound

import (
	"multicollateral/core"
	"multicollateral/pkg/number"

	"github.com/shopspring/decimal"
)

// InfiniteRatio ratio reported for a loan without debt
var InfiniteRatio = decimal.New(1, 36)

// CollateralRatio collateral value / debt value
func CollateralRatio(collateralValue, debtValue decimal.Decimal) decimal.Decimal {
	if !debtValue.IsPositive() {
		return InfiniteRatio
	}

	return collateralValue.DivRound(debtValue, InternalPrecision).Truncate(Precision)
}

// IsHealthy collateralValue >= debtValue * minRatio, compared exactly
func IsHealthy(collateralValue, debtValue, minRatio decimal.Decimal) bool {
	if !debtValue.IsPositive() {
		return true
	}

	return collateralValue.GreaterThanOrEqual(debtValue.Mul(minRatio))
}

// MaxBorrowable collateral value / min ratio
func MaxBorrowable(collateralValue, minRatio decimal.Decimal) decimal.Decimal {
	if !collateralValue.IsPositive() || !minRatio.IsPositive() {
		return decimal.Zero
	}

	return collateralValue.DivRound(minRatio, InternalPrecision).Truncate(Precision)
}

// LiquidationAmount debt value to repay so that the position ends exactly at
// ratio c once the liquidator took repay*(1+penalty) worth of collateral:
//
//	(c*D - V) / (c - (1+P))
//
// which is (D - V*r) / (1 - (1+P)*r) with r = 1/c. The result is rounded up
// and clamped to [0, D]; zero means the position is healthy.
func LiquidationAmount(debt, collateralValue, c, penalty decimal.Decimal) decimal.Decimal {
	if !debt.IsPositive() {
		return decimal.Zero
	}

	shortfall := debt.Mul(c).Sub(collateralValue)
	if !shortfall.IsPositive() {
		return decimal.Zero
	}

	denominator := c.Sub(One.Add(penalty))
	if !denominator.IsPositive() {
		return debt
	}

	amount := number.Ceil(shortfall.DivRound(denominator, InternalPrecision), Precision)
	if amount.GreaterThan(debt) {
		return debt
	}

	return amount
}

// CollateralRedeemed collateral units paid for repaying amount of debt when
// debt and collateral are different currencies:
//
//	amount * debtRate * (1+penalty) / collateralRate
//
// truncated to the collateral's decimals.
func CollateralRedeemed(amount, penalty, debtRate, collateralRate decimal.Decimal, decimals int32) decimal.Decimal {
	if !amount.IsPositive() || !collateralRate.IsPositive() {
		return decimal.Zero
	}

	value := amount.Mul(debtRate).Mul(One.Add(penalty))
	return value.DivRound(collateralRate, InternalPrecision).Truncate(decimals)
}

// CollateralRedeemedSame collateral redeemed when debt and collateral are the
// same currency, no price involved
func CollateralRedeemedSame(amount, penalty decimal.Decimal, decimals int32) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}

	return amount.Mul(One.Add(penalty)).Truncate(decimals)
}

// ValidatePoolParams min ratio > 1, 0 <= penalty < min ratio - 1, fee share in [0,1]
func ValidatePoolParams(pool *core.Pool) error {
	if !pool.Kind.Valid() || pool.ID == "" || pool.CollateralCurrency == "" || len(pool.Currencies) == 0 {
		return core.ErrInvalidPoolParams
	}

	if pool.MinCollateralRatio.LessThanOrEqual(One) {
		return core.ErrInvalidPoolParams
	}

	if pool.LiquidationPenalty.IsNegative() ||
		pool.LiquidationPenalty.GreaterThanOrEqual(pool.MinCollateralRatio.Sub(One)) {
		return core.ErrInvalidPoolParams
	}

	if pool.PenaltyFeeShare.IsNegative() || pool.PenaltyFeeShare.GreaterThan(One) {
		return core.ErrInvalidPoolParams
	}

	if pool.IssueFeeRate.IsNegative() || pool.IssueFeeRate.GreaterThanOrEqual(One) {
		return core.ErrInvalidPoolParams
	}

	if pool.MinLoanSize.IsNegative() || pool.InterestRate.IsNegative() || pool.InteractionDelay < 0 {
		return core.ErrInvalidPoolParams
	}

	if pool.Kind == core.KindToken && (pool.TokenDecimals < 0 || pool.TokenDecimals > Precision) {
		return core.ErrInvalidPoolParams
	}

	return nil
}
