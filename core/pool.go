package core

import (
	"context"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CollateralKind what a pool takes as collateral
type CollateralKind string

const (
	// KindNative the chain's native asset
	KindNative CollateralKind = "native"
	// KindToken a fungible token with its own decimals
	KindToken CollateralKind = "token"
	// KindShort a stable synthetic used to borrow (short) a volatile synthetic
	KindShort CollateralKind = "short"
)

// Valid valid kind
func (k CollateralKind) Valid() bool {
	switch k {
	case KindNative, KindToken, KindShort:
		return true
	}

	return false
}

// Pool collateral pool configuration
type Pool struct {
	ID                 string         `sql:"size:36;PRIMARY_KEY" json:"id"`
	Kind               CollateralKind `sql:"size:12" json:"kind"`
	CollateralCurrency string         `sql:"size:16" json:"collateral_currency"`
	// only meaningful for KindToken, collateral amounts are truncated to it
	TokenDecimals int32 `sql:"default:18" json:"token_decimals,omitempty"`
	// currencies the pool may lend
	Currencies pq.StringArray `sql:"type:varchar(16)[]" json:"currencies"`
	// >1.0, e.g. 1.5
	MinCollateralRatio decimal.Decimal `sql:"type:decimal(32,18)" json:"min_collateral_ratio"`
	MinLoanSize        decimal.Decimal `sql:"type:decimal(48,18)" json:"min_loan_size"`
	IssueFeeRate       decimal.Decimal `sql:"type:decimal(32,18)" json:"issue_fee_rate"`
	// < MinCollateralRatio - 1
	LiquidationPenalty decimal.Decimal `sql:"type:decimal(32,18)" json:"liquidation_penalty"`
	// share of the penalty collateral remitted to the fee sink, [0, 1]
	PenaltyFeeShare decimal.Decimal `sql:"type:decimal(32,18)" json:"penalty_fee_share"`
	// annual rate, ignored by short pools which use the manager's curve
	InterestRate decimal.Decimal `sql:"type:decimal(32,18)" json:"interest_rate"`
	// seconds between two ratio-affecting actions on the same loan
	InteractionDelay int64     `json:"interaction_delay"`
	Version          int64     `sql:"default:0" json:"version"`
	CreatedAt        time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Permits whether the pool may lend currency, with the name as configured
func (p *Pool) Permits(currency string) (string, bool) {
	for _, c := range p.Currencies {
		if strings.EqualFold(c, currency) {
			return c, true
		}
	}

	return "", false
}

// Delay interaction delay
func (p *Pool) Delay() time.Duration {
	return time.Duration(p.InteractionDelay) * time.Second
}

// EscrowAccount the vault account holding this pool's collateral
func (p *Pool) EscrowAccount() string {
	return "pool:" + p.ID
}

// PoolStore pool store interface
type PoolStore interface {
	Save(ctx context.Context, pool *Pool) error
	// Find returns an empty pool (ID == "") when missing
	Find(ctx context.Context, id string) (*Pool, error)
	All(ctx context.Context) ([]*Pool, error)
	Update(ctx context.Context, pool *Pool) error
}

// PoolService one collateral pool's loan ledger
type PoolService interface {
	DebtReporter
	Pool(ctx context.Context) (*Pool, error)
	Open(ctx context.Context, account string, collateral, amount decimal.Decimal, currency string) (*Loan, error)
	Deposit(ctx context.Context, account string, loanID uint64, amount decimal.Decimal) (*Loan, error)
	Withdraw(ctx context.Context, account string, loanID uint64, amount decimal.Decimal) (*Loan, error)
	Repay(ctx context.Context, payer string, loanID uint64, amount decimal.Decimal) (*Loan, error)
	Draw(ctx context.Context, account string, loanID uint64, amount decimal.Decimal) (*Loan, error)
	Liquidate(ctx context.Context, liquidator string, loanID uint64, amount decimal.Decimal) (*Liquidation, error)
	Close(ctx context.Context, account string, loanID uint64) (*Loan, error)

	Loan(ctx context.Context, loanID uint64) (*Loan, error)
	Loans(ctx context.Context, account string) ([]*Loan, error)
	ListOpen(ctx context.Context, from uint64, limit int) ([]*Loan, error)
	Position(ctx context.Context, loanID uint64) (*Position, error)
	// Checkpoint advances every interest index of the pool to now
	Checkpoint(ctx context.Context) error
}

// Position read-only view of a loan at the current instant
type Position struct {
	Loan            *Loan           `json:"loan"`
	Debt            decimal.Decimal `json:"debt"`
	CollateralValue decimal.Decimal `json:"collateral_value"`
	DebtValue       decimal.Decimal `json:"debt_value"`
	Ratio           decimal.Decimal `json:"ratio"`
	MaxBorrowable   decimal.Decimal `json:"max_borrowable"`
	// debt to repay to bring the loan back to the minimum ratio, zero when healthy
	LiquidationAmount decimal.Decimal `json:"liquidation_amount"`
	Liquidatable      bool            `json:"liquidatable"`
}

// Liquidation liquidation result
type Liquidation struct {
	Loan *Loan `json:"loan"`
	// debt burnt from the liquidator
	Repaid decimal.Decimal `json:"repaid"`
	// collateral sent to the liquidator
	Redeemed decimal.Decimal `json:"redeemed"`
	// collateral remitted to the fee sink
	Fee decimal.Decimal `json:"fee"`
	// collateral returned to the borrower when the loan got closed
	Refund decimal.Decimal `json:"refund"`
}

// PoolDirectory pool services by id
type PoolDirectory interface {
	Get(ctx context.Context, poolID string) (PoolService, error)
	All(ctx context.Context) ([]PoolService, error)
	// Add stores a new pool and registers it with the manager
	Add(ctx context.Context, pool *Pool) (PoolService, error)
	// Update changes the parameters of an existing pool
	Update(ctx context.Context, pool *Pool) error
}
