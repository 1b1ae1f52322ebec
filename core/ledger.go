package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FeeAccount ledger account fees are paid into
const FeeAccount = "fees"

// Balance account balance of one currency
type Balance struct {
	Account   string          `sql:"size:64;PRIMARY_KEY" json:"account"`
	Currency  string          `sql:"size:16;PRIMARY_KEY" json:"currency"`
	Amount    decimal.Decimal `sql:"type:decimal(48,18)" json:"amount"`
	Version   int64           `sql:"default:0" json:"version"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SyntheticLedger issuance and burning of synthetic balances
type SyntheticLedger interface {
	Mint(ctx context.Context, account, currency string, amount decimal.Decimal) error
	Burn(ctx context.Context, account, currency string, amount decimal.Decimal) error
	TotalSupply(ctx context.Context, currency string) (decimal.Decimal, error)
}

// CollateralVault moves collateral between accounts and pool escrows
type CollateralVault interface {
	Transfer(ctx context.Context, from, to, currency string, amount decimal.Decimal) error
	BalanceOf(ctx context.Context, account, currency string) (decimal.Decimal, error)
}

// FeeSink receives issuance fees, repaid interest and penalty shares
type FeeSink interface {
	ReceiveFee(ctx context.Context, currency string, amount decimal.Decimal) error
}

// Fee fee record
type Fee struct {
	ID        int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Currency  string          `sql:"size:16;index:idx_fees_currency" json:"currency"`
	Amount    decimal.Decimal `sql:"type:decimal(48,18)" json:"amount"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// FeeStore fee store interface
type FeeStore interface {
	FeeSink
	Totals(ctx context.Context) (map[string]decimal.Decimal, error)
}
