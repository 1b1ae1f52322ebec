package core

import (
	"time"

	"github.com/fox-one/pkg/store/db"
)

// Config service config
type Config struct {
	App     App       `json:"app"`
	DB      db.Config `json:"db"`
	Oracle  Oracle    `json:"oracle"`
	Manager Manager   `json:"manager"`
	Worker  Worker    `json:"worker"`
	Admins  []string  `json:"admins"`

	// api key => account
	Accounts map[string]string `json:"accounts"`
}

// IsAdmin check if the account is admin
func (c *Config) IsAdmin(account string) bool {
	if len(c.Admins) <= 0 {
		return false
	}

	for _, a := range c.Admins {
		if a == account {
			return true
		}
	}

	return false
}

// App app config
type App struct {
	// currency every rate is quoted in, always priced at 1
	QuoteCurrency string `json:"quote_currency"`
	Location      string `json:"location"`
}

// Oracle price oracle config
type Oracle struct {
	EndPoint string `json:"end_point"`
	// prices older than this are stale
	MaxAge int64 `json:"max_age"`
}

// MaxAgeDuration max age
func (o Oracle) MaxAgeDuration() time.Duration {
	if o.MaxAge <= 0 {
		return time.Hour
	}

	return time.Duration(o.MaxAge) * time.Second
}

// Manager manager defaults, overridable at runtime through the property store
type Manager struct {
	DebtCeiling   string            `json:"debt_ceiling"`
	Ceilings      map[string]string `json:"ceilings"`
	ShortBaseRate string            `json:"short_base_rate"`
	ShortSlope    string            `json:"short_slope"`
}

// Worker worker intervals in seconds
type Worker struct {
	AccrualInterval   int64 `json:"accrual_interval"`
	PriceInterval     int64 `json:"price_interval"`
	LiquidateInterval int64 `json:"liquidate_interval"`
}
