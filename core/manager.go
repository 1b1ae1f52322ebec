package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PoolEntry registry entry of a pool known to the manager
type PoolEntry struct {
	PoolID    string         `sql:"size:36;PRIMARY_KEY" json:"pool_id"`
	Kind      CollateralKind `sql:"size:12" json:"kind"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// PoolDebt one pool's outstanding debt in one currency
type PoolDebt struct {
	PoolID   string          `sql:"size:36;PRIMARY_KEY" json:"pool_id"`
	Currency string          `sql:"size:16;PRIMARY_KEY" json:"currency"`
	Short    bool            `json:"short"`
	Amount   decimal.Decimal `sql:"type:decimal(48,18)" json:"amount"`
	Version  int64           `sql:"default:0" json:"version"`
}

// ManagerStore registry and aggregate debt store
type ManagerStore interface {
	SavePool(ctx context.Context, entry *PoolEntry) error
	FindPool(ctx context.Context, poolID string) (*PoolEntry, error)
	ListPools(ctx context.Context) ([]*PoolEntry, error)
	DeletePool(ctx context.Context, poolID string) error

	FindDebt(ctx context.Context, poolID, currency string) (*PoolDebt, error)
	SaveDebt(ctx context.Context, debt *PoolDebt) error
	ListDebts(ctx context.Context) ([]*PoolDebt, error)
	DeleteDebts(ctx context.Context, poolID string) error
}

// ManagerSettings debt ceiling and short rate curve parameters
type ManagerSettings struct {
	// default ceiling for every currency
	DebtCeiling decimal.Decimal `json:"debt_ceiling"`
	// per currency overrides
	Ceilings      map[string]decimal.Decimal `json:"ceilings,omitempty"`
	ShortBaseRate decimal.Decimal            `json:"short_base_rate"`
	ShortSlope    decimal.Decimal            `json:"short_slope"`
}

// Ceiling ceiling of currency
func (s *ManagerSettings) Ceiling(currency string) decimal.Decimal {
	if c, ok := s.Ceilings[currency]; ok {
		return c
	}

	return s.DebtCeiling
}

// DebtCeiling ceiling bookkeeping the pools rely on
type DebtCeiling interface {
	// Reserve checks the ceiling and books amount in one step
	Reserve(ctx context.Context, poolID, currency string, amount decimal.Decimal, short bool) error
	// Accrue books realized interest, never rejected by the ceiling
	Accrue(ctx context.Context, poolID, currency string, amount decimal.Decimal, short bool) error
	Release(ctx context.Context, poolID, currency string, amount decimal.Decimal) error
}

// RateCurve utilization based short rate
type RateCurve interface {
	// ShortRate annual rate for shorting currency
	ShortRate(ctx context.Context, currency string) (decimal.Decimal, error)
}

// PoolRegistry pool activity lookups
type PoolRegistry interface {
	IsActive(ctx context.Context, poolID string) (bool, error)
}

// PoolManager everything a pool needs from the manager
type PoolManager interface {
	DebtCeiling
	RateCurve
	PoolRegistry
}

// DebtReporter implemented by every pool for the manager and the debt cache
type DebtReporter interface {
	PoolID() string
	OpenLoans(ctx context.Context) (int64, error)
	// TotalDebt per currency, interest settled up to now
	TotalDebt(ctx context.Context) (map[string]decimal.Decimal, error)
}

// ManagerService collateral manager
type ManagerService interface {
	PoolManager
	AddPool(ctx context.Context, pool *Pool, reporter DebtReporter) error
	RemovePool(ctx context.Context, poolID string) error
	Pools(ctx context.Context) ([]*PoolEntry, error)
	Settings(ctx context.Context) (*ManagerSettings, error)
	// TotalDebt aggregate debt per currency across pools
	TotalDebt(ctx context.Context) (map[string]decimal.Decimal, error)
	Debts(ctx context.Context) ([]*PoolDebt, error)
	Utilization(ctx context.Context, currency string) (decimal.Decimal, error)
	// SetSetting overrides debt_ceiling, short_base_rate, short_slope or ceiling:<currency>
	SetSetting(ctx context.Context, name string, value decimal.Decimal) error
}
