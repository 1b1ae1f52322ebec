package views

import (
	"multicollateral/core"

	"github.com/shopspring/decimal"
)

// Pool pool view
type Pool struct {
	core.Pool
	Active    bool                       `json:"active"`
	Suspended bool                       `json:"suspended"`
	OpenLoans int64                      `json:"open_loans"`
	TotalDebt map[string]decimal.Decimal `json:"total_debt"`
}

// Manager manager view
type Manager struct {
	Settings  *core.ManagerSettings      `json:"settings"`
	TotalDebt map[string]decimal.Decimal `json:"total_debt"`
	Debts     []*core.PoolDebt           `json:"debts"`
}

// Rate short rate view
type Rate struct {
	Currency    string          `json:"currency"`
	Utilization decimal.Decimal `json:"utilization"`
	ShortRate   decimal.Decimal `json:"short_rate"`
}
