package cmd

import (
	"time"

	"multicollateral/core"
	"multicollateral/pkg/concurrency"
	"multicollateral/pkg/number"
	"multicollateral/service/manager"
	"multicollateral/service/oracle"
	"multicollateral/service/pool"
	"multicollateral/service/status"
	"multicollateral/store"
	"multicollateral/store/balance"
	"multicollateral/store/fee"
	"multicollateral/store/index"
	"multicollateral/store/loan"
	managerstore "multicollateral/store/manager"
	"multicollateral/store/memory"
	poolstore "multicollateral/store/pool"
	"multicollateral/store/price"
	"multicollateral/store/property"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

// stores every store the engine needs, gorm backed or in memory
type stores struct {
	pools      core.PoolStore
	loans      core.LoanStore
	indexes    core.IndexStore
	managers   core.ManagerStore
	balances   balance.Store
	fees       core.FeeStore
	prices     core.IPriceStore
	properties core.PropertyStore
	tx         core.Transactor
}

func provideStores() *stores {
	if memoryMode {
		m := memory.New()
		return &stores{
			pools:      m.Pools(),
			loans:      m.Loans(),
			indexes:    m.Indexes(),
			managers:   m.Manager(),
			balances:   m.Balances(),
			fees:       m.Fees(),
			prices:     m.Prices(),
			properties: m.Properties(),
			tx:         m.Transactor(),
		}
	}

	database := provideDatabase()
	return &stores{
		pools:      poolstore.Cache(poolstore.New(database), time.Minute),
		loans:      loan.New(database),
		indexes:    index.New(database),
		managers:   managerstore.New(database),
		balances:   balance.New(database),
		fees:       fee.New(database),
		prices:     price.New(database),
		properties: property.New(database),
		tx:         store.NewTransactor(database),
	}
}

func provideManagerSettings() core.ManagerSettings {
	settings := core.ManagerSettings{
		DebtCeiling:   number.Decimal(cfg.Manager.DebtCeiling),
		ShortBaseRate: number.Decimal(cfg.Manager.ShortBaseRate),
		ShortSlope:    number.Decimal(cfg.Manager.ShortSlope),
		Ceilings:      map[string]decimal.Decimal{},
	}

	for currency, ceiling := range cfg.Manager.Ceilings {
		settings.Ceilings[currency] = number.DecimalOr(ceiling, settings.DebtCeiling)
	}

	return settings
}

// engine the wired services. Every mutating call goes through one lane.
type engine struct {
	*stores
	lane    *concurrency.Lane
	status  core.StatusService
	oracle  core.PriceOracle
	manager core.ManagerService
	pools   core.PoolDirectory
}

func provideEngine() *engine {
	s := provideStores()
	e := &engine{
		stores: s,
		lane:   concurrency.NewLane(),
		status: status.New(s.properties),
		oracle: oracle.NewOracle(s.prices, cfg.App.QuoteCurrency, cfg.Oracle.MaxAgeDuration()),
	}

	e.manager = manager.New(s.managers, s.balances, s.properties, s.tx, e.lane, provideManagerSettings())
	e.pools = pool.NewDirectory(s.pools, e.manager, s.tx, e.lane, func(poolID string) core.PoolService {
		return pool.New(poolID, s.pools, s.loans, s.indexes, e.manager, e.oracle,
			s.balances, s.balances, s.fees, e.status, s.tx, e.lane)
	})

	return e
}

func providePriceFeedService() core.IPriceFeedService {
	return oracle.New(provideConfig())
}
