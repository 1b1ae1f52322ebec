package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InterestIndex global interest accumulator of a pool. Pool-wide for native and
// token pools (Currency == ""), per borrowed currency for short pools.
type InterestIndex struct {
	PoolID   string          `sql:"size:36;PRIMARY_KEY" json:"pool_id"`
	Currency string          `sql:"size:16;PRIMARY_KEY" json:"currency"`
	Value    decimal.Decimal `sql:"type:decimal(48,18)" json:"value"`
	// time of the last checkpoint
	AccruedAt time.Time `json:"accrued_at"`
	Version   int64     `sql:"default:0" json:"version"`
}

// IndexStore interest index store interface
type IndexStore interface {
	// Find returns an index with zero Value when missing
	Find(ctx context.Context, poolID, currency string) (*InterestIndex, error)
	Save(ctx context.Context, index *InterestIndex) error
	ListByPool(ctx context.Context, poolID string) ([]*InterestIndex, error)
}
