package compound

import (
	"time"

	"multicollateral/core"
	"multicollateral/pkg/number"

	"github.com/shopspring/decimal"
)

var (
	// SecondsPerYear seconds per year
	SecondsPerYear = decimal.NewFromInt(31536000)
	// One identity
	One = decimal.New(1, 0)
	// Precision stored precision of amounts, rates and indexes
	Precision int32 = 18
	// InternalPrecision precision of intermediate products
	InternalPrecision int32 = 27
)

// PerSecondRate converts an annual rate into 1 + apr/SecondsPerYear
func PerSecondRate(apr decimal.Decimal) decimal.Decimal {
	if !apr.IsPositive() {
		return One
	}

	return One.Add(apr.DivRound(SecondsPerYear, InternalPrecision)).Truncate(Precision)
}

// GrowthFactor rate^seconds by binary exponentiation.
//
// Every intermediate product is truncated at InternalPrecision, so the result
// never exceeds the exact power and stays monotonic in seconds for any rate
// carrying at most Precision digits.
func GrowthFactor(rate decimal.Decimal, seconds int64) decimal.Decimal {
	if seconds <= 0 || rate.LessThanOrEqual(One) {
		return One
	}

	base := rate.Truncate(Precision)
	result := One
	for n := seconds; n > 0; n >>= 1 {
		if n&1 == 1 {
			result = result.Mul(base).Truncate(InternalPrecision)
		}

		if n > 1 {
			base = base.Mul(base).Truncate(InternalPrecision)
		}
	}

	return result.Truncate(Precision)
}

// AccruedInterest principal * (rate^seconds - 1), rounded up
func AccruedInterest(principal, rate decimal.Decimal, seconds int64) decimal.Decimal {
	if !principal.IsPositive() {
		return decimal.Zero
	}

	growth := GrowthFactor(rate, seconds)
	return number.Ceil(principal.Mul(growth.Sub(One)), Precision)
}

// Checkpoint advances the accumulator to now and returns the new value. The
// input is left untouched.
func Checkpoint(index core.InterestIndex, rate decimal.Decimal, now time.Time) core.InterestIndex {
	if !index.Value.IsPositive() {
		index.Value = One
	}

	if index.AccruedAt.IsZero() {
		index.AccruedAt = now
		return index
	}

	elapsed := int64(now.Sub(index.AccruedAt) / time.Second)
	if elapsed <= 0 {
		return index
	}

	index.Value = index.Value.Mul(GrowthFactor(rate, elapsed)).Truncate(Precision)
	index.AccruedAt = index.AccruedAt.Add(time.Duration(elapsed) * time.Second)
	return index
}

// InterestOwed interest a debt accrued between snapshot and index:
// debt * (index/snapshot - 1), rounded up
func InterestOwed(debt, index, snapshot decimal.Decimal) decimal.Decimal {
	if !debt.IsPositive() || !snapshot.IsPositive() || index.LessThanOrEqual(snapshot) {
		return decimal.Zero
	}

	grown := debt.Mul(index).DivRound(snapshot, InternalPrecision)
	return number.Ceil(grown.Sub(debt), Precision)
}

// Settle rolls the interest owed since the loan's snapshot into its accrued
// interest and moves the snapshot to index. Returns the newly realized interest.
func Settle(loan *core.Loan, index decimal.Decimal) decimal.Decimal {
	if !loan.InterestIndex.IsPositive() {
		loan.InterestIndex = index
		return decimal.Zero
	}

	owed := InterestOwed(loan.Debt(), index, loan.InterestIndex)
	loan.AccruedInterest = loan.AccruedInterest.Add(owed)
	if index.GreaterThan(loan.InterestIndex) {
		loan.InterestIndex = index
	}

	return owed
}
