package pool

import (
	"context"

	"multicollateral/core"
	"multicollateral/pkg/compound"

	"github.com/shopspring/decimal"
)

const pageSize = 500

func (s *poolService) Loan(ctx context.Context, loanID uint64) (*core.Loan, error) {
	loan, err := s.loans.Find(ctx, s.poolID, loanID)
	if err != nil {
		return nil, err
	}

	if loan.ID == 0 {
		return nil, core.ErrLoanNotFound
	}

	return loan, nil
}

func (s *poolService) Loans(ctx context.Context, account string) ([]*core.Loan, error) {
	return s.loans.FindByAccount(ctx, s.poolID, account)
}

func (s *poolService) ListOpen(ctx context.Context, from uint64, limit int) ([]*core.Loan, error) {
	return s.loans.ListOpen(ctx, s.poolID, from, limit)
}

func (s *poolService) OpenLoans(ctx context.Context) (int64, error) {
	return s.loans.CountOpen(ctx, s.poolID)
}

// Position the loan with interest settled up to now, nothing is stored
func (s *poolService) Position(ctx context.Context, loanID uint64) (*core.Position, error) {
	loan, err := s.Loan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	pos := &core.Position{
		Loan:              loan,
		Debt:              decimal.Zero,
		CollateralValue:   decimal.Zero,
		DebtValue:         decimal.Zero,
		Ratio:             compound.InfiniteRatio,
		MaxBorrowable:     decimal.Zero,
		LiquidationAmount: decimal.Zero,
	}

	if !loan.IsOpen() {
		return pos, nil
	}

	pool, err := s.Pool(ctx)
	if err != nil {
		return nil, err
	}

	k := kindOf(pool.Kind)
	index, err := s.peekIndex(ctx, pool, k, loan.Currency, s.now())
	if err != nil {
		return nil, err
	}

	compound.Settle(loan, index.Value)
	pos.Debt = loan.Debt()

	v, err := s.value(ctx, pool, k, loan.Collateral, pos.Debt, loan.Currency)
	if err != nil {
		return nil, err
	}

	pos.CollateralValue = v.collateral
	pos.DebtValue = v.debt
	pos.Ratio = compound.CollateralRatio(v.collateral, v.debt)

	if limit := v.units(compound.MaxBorrowable(v.collateral, pool.MinCollateralRatio), false); limit.GreaterThan(pos.Debt) {
		pos.MaxBorrowable = limit.Sub(pos.Debt)
	}

	if pos.Debt.IsPositive() && !compound.IsHealthy(v.collateral, v.debt, pool.MinCollateralRatio) {
		pos.Liquidatable = true
		pos.LiquidationAmount, _ = s.liquidationSize(pool, k, v, loan.Collateral, pos.Debt)
	}

	return pos, nil
}

// TotalDebt debt of every open loan per currency with interest settled up to now
func (s *poolService) TotalDebt(ctx context.Context) (map[string]decimal.Decimal, error) {
	pool, err := s.Pool(ctx)
	if err != nil {
		return nil, err
	}

	var (
		k       = kindOf(pool.Kind)
		now     = s.now()
		indexes = map[string]decimal.Decimal{}
		totals  = map[string]decimal.Decimal{}
		from    uint64
	)

	for {
		loans, err := s.loans.ListOpen(ctx, s.poolID, from, pageSize)
		if err != nil {
			return nil, err
		}

		for _, loan := range loans {
			from = loan.ID

			index, ok := indexes[loan.Currency]
			if !ok {
				idx, err := s.peekIndex(ctx, pool, k, loan.Currency, now)
				if err != nil {
					return nil, err
				}

				index = idx.Value
				indexes[loan.Currency] = index
			}

			compound.Settle(loan, index)
			totals[loan.Currency] = totals[loan.Currency].Add(loan.Debt())
		}

		if len(loans) < pageSize {
			break
		}
	}

	return totals, nil
}

// Checkpoint stores every accumulator of the pool advanced to now
func (s *poolService) Checkpoint(ctx context.Context) error {
	return s.lane.Do(ctx, func() error {
		return s.tx.Tx(ctx, func(ctx context.Context) error {
			pool, err := s.Pool(ctx)
			if err != nil {
				return err
			}

			k := kindOf(pool.Kind)
			now := s.now()
			for _, currency := range k.indexKeys(pool) {
				if _, err := s.checkpoint(ctx, pool, k, currency, now); err != nil {
					return err
				}
			}

			return nil
		})
	})
}
