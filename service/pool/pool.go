package pool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"multicollateral/core"
	"multicollateral/pkg/compound"
	"multicollateral/pkg/concurrency"
	"multicollateral/pkg/id"
	"multicollateral/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type poolService struct {
	poolID  string
	pools   core.PoolStore
	loans   core.LoanStore
	indexes core.IndexStore
	manager core.PoolManager
	oracle  core.PriceOracle
	ledger  core.SyntheticLedger
	vault   core.CollateralVault
	fees    core.FeeSink
	status  core.SystemStatus
	tx      core.Transactor
	lane    *concurrency.Lane
	clock   func() time.Time
}

// New new collateral pool service. Every mutating call of every pool and of
// the manager must share the same lane.
func New(
	poolID string,
	pools core.PoolStore,
	loans core.LoanStore,
	indexes core.IndexStore,
	manager core.PoolManager,
	oracle core.PriceOracle,
	ledger core.SyntheticLedger,
	vault core.CollateralVault,
	fees core.FeeSink,
	status core.SystemStatus,
	tx core.Transactor,
	lane *concurrency.Lane,
) core.PoolService {
	return &poolService{
		poolID:  poolID,
		pools:   pools,
		loans:   loans,
		indexes: indexes,
		manager: manager,
		oracle:  oracle,
		ledger:  ledger,
		vault:   vault,
		fees:    fees,
		status:  status,
		tx:      tx,
		lane:    lane,
		clock:   time.Now,
	}
}

func (s *poolService) PoolID() string {
	return s.poolID
}

// now operations work on whole seconds
func (s *poolService) now() time.Time {
	return s.clock().UTC().Truncate(time.Second)
}

func (s *poolService) Pool(ctx context.Context) (*core.Pool, error) {
	pool, err := s.pools.Find(ctx, s.poolID)
	if err != nil {
		return nil, err
	}

	if pool.ID == "" {
		return nil, core.ErrPoolNotFound
	}

	return pool, nil
}

func (s *poolService) log(ctx context.Context, op string, loanID uint64) *logrus.Entry {
	return logger.FromContext(ctx).WithFields(logrus.Fields{
		"pool":  s.poolID,
		"op":    op,
		"loan":  loanID,
		"trace": id.LoanTraceID(s.poolID, loanID, op, s.clock().Unix()),
	})
}

// mutate runs fn in the shared lane as one unit of work, nothing fn wrote
// survives an error
func (s *poolService) mutate(ctx context.Context, fn func(ctx context.Context, pool *core.Pool, now time.Time) error) error {
	return s.lane.Do(ctx, func() error {
		return s.tx.Tx(ctx, func(ctx context.Context) error {
			pool, err := s.begin(ctx)
			if err != nil {
				return err
			}

			return fn(ctx, pool, s.now())
		})
	})
}

func (s *poolService) begin(ctx context.Context) (*core.Pool, error) {
	for _, section := range []string{core.SectionGlobal, core.PoolSection(s.poolID)} {
		suspended, err := s.status.IsSuspended(ctx, section)
		if err != nil {
			return nil, err
		}

		if suspended {
			return nil, fmt.Errorf("%s: %w", section, core.ErrSuspended)
		}
	}

	pool, err := s.Pool(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.manager.IsActive(ctx, pool.ID)
	if err != nil {
		return nil, err
	}

	if !active {
		return nil, core.ErrPoolInactive
	}

	return pool, nil
}

func (s *poolService) openLoan(ctx context.Context, loanID uint64) (*core.Loan, error) {
	loan, err := s.loans.Find(ctx, s.poolID, loanID)
	if err != nil {
		return nil, err
	}

	if loan.ID == 0 {
		return nil, core.ErrLoanNotFound
	}

	if !loan.IsOpen() {
		return nil, core.ErrLoanClosed
	}

	return loan, nil
}

func (s *poolService) price(ctx context.Context, currency string) (decimal.Decimal, error) {
	rate, stale, err := s.oracle.Rate(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}

	if stale || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: %w", currency, core.ErrStalePrice)
	}

	return rate, nil
}

type valuation struct {
	// quote values
	collateral decimal.Decimal
	debt       decimal.Decimal

	collateralRate decimal.Decimal
	debtRate       decimal.Decimal
	// debt and collateral are the same currency, no price involved
	same bool
}

func (s *poolService) value(ctx context.Context, pool *core.Pool, k kind, collateral, debt decimal.Decimal, currency string) (*valuation, error) {
	collateral = collateral.Truncate(k.decimals(pool))
	if strings.EqualFold(currency, pool.CollateralCurrency) {
		return &valuation{
			collateral:     collateral,
			debt:           debt,
			collateralRate: compound.One,
			debtRate:       compound.One,
			same:           true,
		}, nil
	}

	collateralRate, err := s.price(ctx, pool.CollateralCurrency)
	if err != nil {
		return nil, err
	}

	debtRate, err := s.price(ctx, currency)
	if err != nil {
		return nil, err
	}

	return &valuation{
		collateral:     collateral.Mul(collateralRate),
		debt:           debt.Mul(debtRate),
		collateralRate: collateralRate,
		debtRate:       debtRate,
	}, nil
}

// units converts a quote value into units of the loan currency
func (v *valuation) units(value decimal.Decimal, roundUp bool) decimal.Decimal {
	if !v.same {
		value = value.DivRound(v.debtRate, compound.InternalPrecision)
	}

	if roundUp {
		return number.Ceil(value, compound.Precision)
	}

	return value.Truncate(compound.Precision)
}

// liquidationSize debt to repay to bring the loan back to the minimum ratio.
// full reports that the loan has to be closed instead: the collateral can't
// pay the penalty on that amount, or the remaining debt would be dust.
func (s *poolService) liquidationSize(pool *core.Pool, k kind, v *valuation, collateral, debt decimal.Decimal) (decimal.Decimal, bool) {
	need := v.units(compound.LiquidationAmount(v.debt, v.collateral, pool.MinCollateralRatio, pool.LiquidationPenalty), true)
	if need.GreaterThanOrEqual(debt) || debt.Sub(need).LessThan(pool.MinLoanSize) {
		return debt, true
	}

	if s.redeemed(pool, k, v, need).GreaterThanOrEqual(collateral) {
		return debt, true
	}

	return need, false
}

func (s *poolService) redeemed(pool *core.Pool, k kind, v *valuation, repay decimal.Decimal) decimal.Decimal {
	if v.same {
		return compound.CollateralRedeemedSame(repay, pool.LiquidationPenalty, k.decimals(pool))
	}

	return compound.CollateralRedeemed(repay, pool.LiquidationPenalty, v.debtRate, v.collateralRate, k.decimals(pool))
}

// peekIndex the accumulator of currency advanced to now, not stored
func (s *poolService) peekIndex(ctx context.Context, pool *core.Pool, k kind, currency string, now time.Time) (*core.InterestIndex, error) {
	index, err := s.indexes.Find(ctx, pool.ID, k.indexKey(currency))
	if err != nil {
		return nil, err
	}

	apr, err := k.annualRate(ctx, s.manager, pool, currency)
	if err != nil {
		return nil, err
	}

	next := compound.Checkpoint(*index, compound.PerSecondRate(apr), now)
	return &next, nil
}

// checkpoint advances and stores the accumulator of currency
func (s *poolService) checkpoint(ctx context.Context, pool *core.Pool, k kind, currency string, now time.Time) (*core.InterestIndex, error) {
	index, err := s.peekIndex(ctx, pool, k, currency, now)
	if err != nil {
		return nil, err
	}

	if err := s.indexes.Save(ctx, index); err != nil {
		return nil, err
	}

	return index, nil
}

// settle checkpoint then roll the loan's interest into its debt
func (s *poolService) settle(ctx context.Context, pool *core.Pool, k kind, loan *core.Loan, now time.Time) error {
	index, err := s.checkpoint(ctx, pool, k, loan.Currency, now)
	if err != nil {
		return err
	}

	owed := compound.Settle(loan, index.Value)
	return s.manager.Accrue(ctx, pool.ID, loan.Currency, owed, k.short())
}

// payFee mints a synthetic fee to the fee account and records it
func (s *poolService) payFee(ctx context.Context, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}

	if err := s.ledger.Mint(ctx, core.FeeAccount, currency, amount); err != nil {
		return err
	}

	return s.fees.ReceiveFee(ctx, currency, amount)
}

// issue mints amount minus the issuance fee to account
func (s *poolService) issue(ctx context.Context, pool *core.Pool, account, currency string, amount decimal.Decimal) error {
	fee := amount.Mul(pool.IssueFeeRate).Truncate(compound.Precision)
	if err := s.ledger.Mint(ctx, account, currency, amount.Sub(fee)); err != nil {
		return err
	}

	return s.payFee(ctx, currency, fee)
}

// repayDebt pays interest first, then principal. Returns the interest part.
func repayDebt(loan *core.Loan, amount decimal.Decimal) decimal.Decimal {
	interest := decimal.Min(amount, loan.AccruedInterest)
	loan.AccruedInterest = loan.AccruedInterest.Sub(interest)
	loan.Principal = loan.Principal.Sub(amount.Sub(interest))
	return interest
}

func tooSoon(pool *core.Pool, loan *core.Loan, now time.Time) bool {
	return pool.InteractionDelay > 0 && now.Before(loan.LastInteractionAt.Add(pool.Delay()))
}

func (s *poolService) Open(ctx context.Context, account string, collateral, amount decimal.Decimal, currency string) (*core.Loan, error) {
	var loan *core.Loan
	err := s.mutate(ctx, func(ctx context.Context, pool *core.Pool, now time.Time) error {
		if account == "" || !collateral.IsPositive() || !amount.IsPositive() {
			return core.ErrInputInvalid
		}

		currency, ok := pool.Permits(currency)
		if !ok {
			return core.ErrCurrencyNotAllowed
		}

		k := kindOf(pool.Kind)
		collateral := collateral.Truncate(k.decimals(pool))
		amount := amount.Truncate(compound.Precision)
		if !collateral.IsPositive() || !amount.IsPositive() {
			return core.ErrInputInvalid
		}

		if amount.LessThan(pool.MinLoanSize) {
			return core.ErrBelowMinimumSize
		}

		v, err := s.value(ctx, pool, k, collateral, amount, currency)
		if err != nil {
			return err
		}

		if !compound.IsHealthy(v.collateral, v.debt, pool.MinCollateralRatio) {
			return core.ErrRatioViolation
		}

		index, err := s.checkpoint(ctx, pool, k, currency, now)
		if err != nil {
			return err
		}

		if err := s.manager.Reserve(ctx, pool.ID, currency, amount, k.short()); err != nil {
			return err
		}

		if err := s.vault.Transfer(ctx, account, pool.EscrowAccount(), pool.CollateralCurrency, collateral); err != nil {
			return err
		}

		if err := s.issue(ctx, pool, account, currency, amount); err != nil {
			return err
		}

		loan = &core.Loan{
			PoolID:            pool.ID,
			Account:           account,
			Currency:          currency,
			Collateral:        collateral,
			Principal:         amount,
			AccruedInterest:   decimal.Zero,
			InterestIndex:     index.Value,
			LastInteractionAt: now,
			Status:            core.LoanStatusOpen,
		}
		return s.loans.Create(ctx, loan)
	})
	if err != nil {
		s.log(ctx, "open", 0).WithError(err).Infoln("rejected")
		return nil, err
	}

	s.log(ctx, "open", loan.ID).Infof("%s borrowed %s %s against %s", account, amount, loan.Currency, loan.Collateral)
	return loan, nil
}

func (s *poolService) Deposit(ctx context.Context, account string, loanID uint64, amount decimal.Decimal) (*core.Loan, error) {
	var loan *core.Loan
	err := s.mutate(ctx, func(ctx context.Context, pool *core.Pool, now time.Time) error {
		k := kindOf(pool.Kind)
		amount := amount.Truncate(k.decimals(pool))
		if account == "" || !amount.IsPositive() {
			return core.ErrInputInvalid
		}

		var err error
		if loan, err = s.openLoan(ctx, loanID); err != nil {
			return err
		}

		if err := s.settle(ctx, pool, k, loan, now); err != nil {
			return err
		}

		if err := s.vault.Transfer(ctx, account, pool.EscrowAccount(), pool.CollateralCurrency, amount); err != nil {
			return err
		}

		loan.Collateral = loan.Collateral.Add(amount)
		loan.LastInteractionAt = now
		return s.loans.Update(ctx, loan)
	})
	if err != nil {
		s.log(ctx, "deposit", loanID).WithError(err).Infoln("rejected")
		return nil, err
	}

	return loan, nil
}

func (s *poolService) Withdraw(ctx context.Context, account string, loanID uint64, amount decimal.Decimal) (*core.Loan, error) {
	var loan *core.Loan
	err := s.mutate(ctx, func(ctx context.Context, pool *core.Pool, now time.Time) error {
		k := kindOf(pool.Kind)
		amount := amount.Truncate(k.decimals(pool))
		if !amount.IsPositive() {
			return core.ErrInputInvalid
		}

		var err error
		if loan, err = s.openLoan(ctx, loanID); err != nil {
			return err
		}

		if loan.Account != account {
			return core.ErrOperationForbidden
		}

		if tooSoon(pool, loan, now) {
			return core.ErrInteractionTooSoon
		}

		if amount.GreaterThan(loan.Collateral) {
			return core.ErrInsufficientCollateral
		}

		if err := s.settle(ctx, pool, k, loan, now); err != nil {
			return err
		}

		loan.Collateral = loan.Collateral.Sub(amount)
		if debt := loan.Debt(); debt.IsPositive() {
			v, err := s.value(ctx, pool, k, loan.Collateral, debt, loan.Currency)
			if err != nil {
				return err
			}

			if !compound.IsHealthy(v.collateral, v.debt, pool.MinCollateralRatio) {
				return core.ErrRatioViolation
			}
		}

		if err := s.vault.Transfer(ctx, pool.EscrowAccount(), account, pool.CollateralCurrency, amount); err != nil {
			return err
		}

		loan.LastInteractionAt = now
		return s.loans.Update(ctx, loan)
	})
	if err != nil {
		s.log(ctx, "withdraw", loanID).WithError(err).Infoln("rejected")
		return nil, err
	}

	return loan, nil
}

func (s *poolService) Repay(ctx context.Context, payer string, loanID uint64, amount decimal.Decimal) (*core.Loan, error) {
	var loan *core.Loan
	err := s.mutate(ctx, func(ctx context.Context, pool *core.Pool, now time.Time) error {
		amount := amount.Truncate(compound.Precision)
		if payer == "" || !amount.IsPositive() {
			return core.ErrInputInvalid
		}

		var err error
		if loan, err = s.openLoan(ctx, loanID); err != nil {
			return err
		}

		k := kindOf(pool.Kind)
		if err := s.settle(ctx, pool, k, loan, now); err != nil {
			return err
		}

		debt := loan.Debt()
		if !debt.IsPositive() {
			return core.ErrInputInvalid
		}

		repay := decimal.Min(amount, debt)
		if rest := debt.Sub(repay); rest.IsPositive() && rest.LessThan(pool.MinLoanSize) {
			return core.ErrBelowMinimumSize
		}

		if err := s.ledger.Burn(ctx, payer, loan.Currency, repay); err != nil {
			return err
		}

		interest := repayDebt(loan, repay)
		if err := s.payFee(ctx, loan.Currency, interest); err != nil {
			return err
		}

		if err := s.manager.Release(ctx, pool.ID, loan.Currency, repay); err != nil {
			return err
		}

		loan.LastInteractionAt = now
		return s.loans.Update(ctx, loan)
	})
	if err != nil {
		s.log(ctx, "repay", loanID).WithError(err).Infoln("rejected")
		return nil, err
	}

	return loan, nil
}

func (s *poolService) Draw(ctx context.Context, account string, loanID uint64, amount decimal.Decimal) (*core.Loan, error) {
	var loan *core.Loan
	err := s.mutate(ctx, func(ctx context.Context, pool *core.Pool, now time.Time) error {
		amount := amount.Truncate(compound.Precision)
		if !amount.IsPositive() {
			return core.ErrInputInvalid
		}

		var err error
		if loan, err = s.openLoan(ctx, loanID); err != nil {
			return err
		}

		if loan.Account != account {
			return core.ErrOperationForbidden
		}

		if tooSoon(pool, loan, now) {
			return core.ErrInteractionTooSoon
		}

		k := kindOf(pool.Kind)
		if err := s.settle(ctx, pool, k, loan, now); err != nil {
			return err
		}

		v, err := s.value(ctx, pool, k, loan.Collateral, loan.Debt().Add(amount), loan.Currency)
		if err != nil {
			return err
		}

		if !compound.IsHealthy(v.collateral, v.debt, pool.MinCollateralRatio) {
			return core.ErrRatioViolation
		}

		if err := s.manager.Reserve(ctx, pool.ID, loan.Currency, amount, k.short()); err != nil {
			return err
		}

		if err := s.issue(ctx, pool, account, loan.Currency, amount); err != nil {
			return err
		}

		loan.Principal = loan.Principal.Add(amount)
		loan.LastInteractionAt = now
		return s.loans.Update(ctx, loan)
	})
	if err != nil {
		s.log(ctx, "draw", loanID).WithError(err).Infoln("rejected")
		return nil, err
	}

	return loan, nil
}

func (s *poolService) Liquidate(ctx context.Context, liquidator string, loanID uint64, amount decimal.Decimal) (*core.Liquidation, error) {
	var result *core.Liquidation
	err := s.mutate(ctx, func(ctx context.Context, pool *core.Pool, now time.Time) error {
		amount := amount.Truncate(compound.Precision)
		if liquidator == "" || !amount.IsPositive() {
			return core.ErrInputInvalid
		}

		loan, err := s.openLoan(ctx, loanID)
		if err != nil {
			return err
		}

		k := kindOf(pool.Kind)
		if err := s.settle(ctx, pool, k, loan, now); err != nil {
			return err
		}

		debt := loan.Debt()
		v, err := s.value(ctx, pool, k, loan.Collateral, debt, loan.Currency)
		if err != nil {
			return err
		}

		if !debt.IsPositive() || compound.IsHealthy(v.collateral, v.debt, pool.MinCollateralRatio) {
			return core.ErrNotUndercollateralized
		}

		need, full := s.liquidationSize(pool, k, v, loan.Collateral, debt)
		repay := decimal.Min(amount, need)
		if full && repay.LessThan(debt) {
			return fmt.Errorf("liquidation closes the loan, repay %s: %w", debt, core.ErrBelowMinimumSize)
		}

		redeemed := decimal.Min(s.redeemed(pool, k, v, repay), loan.Collateral)
		// protocol share of the penalty slice
		penalty := redeemed.Sub(redeemed.DivRound(compound.One.Add(pool.LiquidationPenalty), compound.InternalPrecision))
		fee := penalty.Mul(pool.PenaltyFeeShare).Truncate(k.decimals(pool))

		if err := s.ledger.Burn(ctx, liquidator, loan.Currency, repay); err != nil {
			return err
		}

		interest := repayDebt(loan, repay)
		if err := s.payFee(ctx, loan.Currency, interest); err != nil {
			return err
		}

		if err := s.manager.Release(ctx, pool.ID, loan.Currency, repay); err != nil {
			return err
		}

		escrow := pool.EscrowAccount()
		if err := s.vault.Transfer(ctx, escrow, liquidator, pool.CollateralCurrency, redeemed.Sub(fee)); err != nil {
			return err
		}

		if fee.IsPositive() {
			if err := s.vault.Transfer(ctx, escrow, core.FeeAccount, pool.CollateralCurrency, fee); err != nil {
				return err
			}

			if err := s.fees.ReceiveFee(ctx, pool.CollateralCurrency, fee); err != nil {
				return err
			}
		}

		loan.Collateral = loan.Collateral.Sub(redeemed)
		result = &core.Liquidation{
			Repaid:   repay,
			Redeemed: redeemed.Sub(fee),
			Fee:      fee,
			Refund:   decimal.Zero,
		}

		if !loan.Debt().IsPositive() {
			result.Refund = loan.Collateral
			if err := s.vault.Transfer(ctx, escrow, loan.Account, pool.CollateralCurrency, loan.Collateral); err != nil {
				return err
			}

			loan.Zero()
		}

		result.Loan = loan
		return s.loans.Update(ctx, loan)
	})
	if err != nil {
		s.log(ctx, "liquidate", loanID).WithError(err).Infoln("rejected")
		return nil, err
	}

	s.log(ctx, "liquidate", loanID).Infof("%s repaid %s, redeemed %s, fee %s, refund %s",
		liquidator, result.Repaid, result.Redeemed, result.Fee, result.Refund)
	return result, nil
}

func (s *poolService) Close(ctx context.Context, account string, loanID uint64) (*core.Loan, error) {
	var loan *core.Loan
	err := s.mutate(ctx, func(ctx context.Context, pool *core.Pool, now time.Time) error {
		var err error
		if loan, err = s.openLoan(ctx, loanID); err != nil {
			return err
		}

		if loan.Account != account {
			return core.ErrOperationForbidden
		}

		k := kindOf(pool.Kind)
		if err := s.settle(ctx, pool, k, loan, now); err != nil {
			return err
		}

		debt := loan.Debt()
		if err := s.ledger.Burn(ctx, account, loan.Currency, debt); err != nil {
			return err
		}

		if err := s.payFee(ctx, loan.Currency, loan.AccruedInterest); err != nil {
			return err
		}

		if err := s.manager.Release(ctx, pool.ID, loan.Currency, debt); err != nil {
			return err
		}

		if err := s.vault.Transfer(ctx, pool.EscrowAccount(), account, pool.CollateralCurrency, loan.Collateral); err != nil {
			return err
		}

		loan.Zero()
		loan.LastInteractionAt = now
		return s.loans.Update(ctx, loan)
	})
	if err != nil {
		s.log(ctx, "close", loanID).WithError(err).Infoln("rejected")
		return nil, err
	}

	s.log(ctx, "close", loanID).Infoln("closed")
	return loan, nil
}
