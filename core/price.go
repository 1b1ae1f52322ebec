package core

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Price oracle price record
type Price struct {
	ID       int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	Currency string          `sql:"size:16;index:idx_prices_currency" json:"currency,omitempty"`
	Price    decimal.Decimal `sql:"type:decimal(48,18)" json:"price,omitempty"`
	Provider string          `sql:"size:64" json:"provider,omitempty"`
	// raw ticker payload
	Content   types.JSONText `sql:"type:varchar(1024)" json:"content,omitempty"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
}

// PriceTicker price ticker
type PriceTicker struct {
	Provider string          `json:"provider,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	Price    decimal.Decimal `json:"price,omitempty"`
}

// IPriceStore price store interface
type IPriceStore interface {
	Create(ctx context.Context, price *Price) error
	// Latest returns an empty price (ID == 0) when none recorded
	Latest(ctx context.Context, currency string) (*Price, error)
	DeleteBefore(ctx context.Context, t time.Time) error
}

// PriceOracle quote rates. A stale rate must never be used.
type PriceOracle interface {
	Rate(ctx context.Context, currency string) (rate decimal.Decimal, stale bool, err error)
}

// IPriceFeedService pulls tickers from the upstream feed
type IPriceFeedService interface {
	PullPriceTicker(ctx context.Context, symbol string, t time.Time) (*PriceTicker, error)
}
