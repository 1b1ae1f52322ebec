package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus loan status
type LoanStatus int

const (
	_ LoanStatus = iota
	// LoanStatusOpen open
	LoanStatusOpen
	// LoanStatusClosed closed by the borrower or by a full liquidation
	LoanStatusClosed
)

func (s LoanStatus) String() string {
	switch s {
	case LoanStatusOpen:
		return "open"
	case LoanStatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Loan one position inside a collateral pool
type Loan struct {
	PoolID   string `sql:"size:36;PRIMARY_KEY" json:"pool_id"`
	ID       uint64 `sql:"PRIMARY_KEY;auto_increment:false" json:"id"`
	Account  string `sql:"size:64;index:idx_loans_account" json:"account"`
	Currency string `sql:"size:16" json:"currency"`
	// collateral locked, in the pool's collateral currency
	Collateral decimal.Decimal `sql:"type:decimal(48,18)" json:"collateral"`
	Principal  decimal.Decimal `sql:"type:decimal(48,18)" json:"principal"`
	// realized interest not yet repaid
	AccruedInterest decimal.Decimal `sql:"type:decimal(48,18)" json:"accrued_interest"`
	// accumulator value at the loan's last checkpoint
	InterestIndex     decimal.Decimal `sql:"type:decimal(48,18)" json:"interest_index"`
	LastInteractionAt time.Time       `json:"last_interaction_at"`
	Status            LoanStatus      `sql:"default:1;index:idx_loans_status" json:"status"`
	Version           int64           `sql:"default:0" json:"version"`
	CreatedAt         time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Debt principal plus realized interest
func (l *Loan) Debt() decimal.Decimal {
	return l.Principal.Add(l.AccruedInterest)
}

// IsOpen is open
func (l *Loan) IsOpen() bool {
	return l.Status == LoanStatusOpen
}

// Zero wipe the loan, used by close and full liquidation
func (l *Loan) Zero() {
	l.Collateral = decimal.Zero
	l.Principal = decimal.Zero
	l.AccruedInterest = decimal.Zero
	l.Status = LoanStatusClosed
}

// LoanStore loan store interface
type LoanStore interface {
	// Create assigns the next id inside the pool
	Create(ctx context.Context, loan *Loan) error
	// Find returns an empty loan (ID == 0) when missing
	Find(ctx context.Context, poolID string, id uint64) (*Loan, error)
	FindByAccount(ctx context.Context, poolID, account string) ([]*Loan, error)
	ListOpen(ctx context.Context, poolID string, from uint64, limit int) ([]*Loan, error)
	CountOpen(ctx context.Context, poolID string) (int64, error)
	Update(ctx context.Context, loan *Loan) error
}
