package manager

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"multicollateral/core"
	"multicollateral/pkg/compound"
	"multicollateral/pkg/concurrency"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	settingDebtCeiling   = "debt_ceiling"
	settingShortBaseRate = "short_base_rate"
	settingShortSlope    = "short_slope"
	settingCeilingPrefix = "ceiling:"

	propertyPrefix = "manager:"
)

type managerService struct {
	store      core.ManagerStore
	ledger     core.SyntheticLedger
	properties core.PropertyStore
	tx         core.Transactor
	lane       *concurrency.Lane
	defaults   core.ManagerSettings

	mu        sync.RWMutex
	reporters map[string]core.DebtReporter
}

// New new collateral manager
func New(
	store core.ManagerStore,
	ledger core.SyntheticLedger,
	properties core.PropertyStore,
	tx core.Transactor,
	lane *concurrency.Lane,
	defaults core.ManagerSettings,
) core.ManagerService {
	return &managerService{
		store:      store,
		ledger:     ledger,
		properties: properties,
		tx:         tx,
		lane:       lane,
		defaults:   defaults,
		reporters:  map[string]core.DebtReporter{},
	}
}

func (s *managerService) reporter(poolID string) (core.DebtReporter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reporters[poolID]
	return r, ok
}

// AddPool registers the pool, calling it again for a registered pool only
// re-attaches the reporter
func (s *managerService) AddPool(ctx context.Context, pool *core.Pool, reporter core.DebtReporter) error {
	if err := compound.ValidatePoolParams(pool); err != nil {
		return err
	}

	if reporter == nil || reporter.PoolID() != pool.ID {
		return fmt.Errorf("reporter of pool %s: %w", pool.ID, core.ErrInputInvalid)
	}

	err := s.lane.Do(ctx, func() error {
		return s.tx.Tx(ctx, func(ctx context.Context) error {
			return s.store.SavePool(ctx, &core.PoolEntry{
				PoolID: pool.ID,
				Kind:   pool.Kind,
			})
		})
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.reporters[pool.ID] = reporter
	s.mu.Unlock()

	logger.FromContext(ctx).WithField("pool", pool.ID).Infoln("pool added")
	return nil
}

func (s *managerService) RemovePool(ctx context.Context, poolID string) error {
	log := logger.FromContext(ctx).WithField("pool", poolID)

	err := s.lane.Do(ctx, func() error {
		return s.tx.Tx(ctx, func(ctx context.Context) error {
			entry, err := s.store.FindPool(ctx, poolID)
			if err != nil {
				return err
			}

			if entry.PoolID == "" {
				return core.ErrPoolNotFound
			}

			reporter, ok := s.reporter(poolID)
			if !ok {
				return fmt.Errorf("no reporter attached to %s: %w", poolID, core.ErrPoolInactive)
			}

			open, err := reporter.OpenLoans(ctx)
			if err != nil {
				return err
			}

			if open > 0 {
				return core.ErrPoolHasOpenLoans
			}

			if err := s.store.DeleteDebts(ctx, poolID); err != nil {
				return err
			}

			return s.store.DeletePool(ctx, poolID)
		})
	})
	if err != nil {
		log.WithError(err).Infoln("remove pool rejected")
		return err
	}

	s.mu.Lock()
	delete(s.reporters, poolID)
	s.mu.Unlock()

	log.Infoln("pool removed")
	return nil
}

func (s *managerService) Pools(ctx context.Context) ([]*core.PoolEntry, error) {
	return s.store.ListPools(ctx)
}

func (s *managerService) IsActive(ctx context.Context, poolID string) (bool, error) {
	entry, err := s.store.FindPool(ctx, poolID)
	if err != nil {
		return false, err
	}

	return entry.PoolID != "", nil
}

func (s *managerService) setting(ctx context.Context, name string, fallback decimal.Decimal) (decimal.Decimal, error) {
	v, err := s.properties.Get(ctx, propertyPrefix+name)
	if err != nil {
		return decimal.Zero, err
	}

	if v == "" {
		return fallback, nil
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("bad setting", name, v)
		return fallback, nil
	}

	return d, nil
}

func (s *managerService) Settings(ctx context.Context) (*core.ManagerSettings, error) {
	settings := core.ManagerSettings{
		Ceilings: map[string]decimal.Decimal{},
	}

	var err error
	if settings.DebtCeiling, err = s.setting(ctx, settingDebtCeiling, s.defaults.DebtCeiling); err != nil {
		return nil, err
	}

	if settings.ShortBaseRate, err = s.setting(ctx, settingShortBaseRate, s.defaults.ShortBaseRate); err != nil {
		return nil, err
	}

	if settings.ShortSlope, err = s.setting(ctx, settingShortSlope, s.defaults.ShortSlope); err != nil {
		return nil, err
	}

	for currency, ceiling := range s.defaults.Ceilings {
		if settings.Ceilings[currency], err = s.setting(ctx, settingCeilingPrefix+currency, ceiling); err != nil {
			return nil, err
		}
	}

	return &settings, nil
}

func (s *managerService) ceiling(ctx context.Context, currency string) (decimal.Decimal, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return s.setting(ctx, settingCeilingPrefix+currency, settings.Ceiling(currency))
}

func (s *managerService) SetSetting(ctx context.Context, name string, value decimal.Decimal) error {
	switch {
	case name == settingDebtCeiling, name == settingShortBaseRate, name == settingShortSlope:
	case strings.HasPrefix(name, settingCeilingPrefix) && len(name) > len(settingCeilingPrefix):
	default:
		return fmt.Errorf("unknown setting %q: %w", name, core.ErrInputInvalid)
	}

	if value.IsNegative() {
		return fmt.Errorf("negative %s: %w", name, core.ErrInputInvalid)
	}

	return s.lane.Do(ctx, func() error {
		return s.properties.Save(ctx, propertyPrefix+name, value.String())
	})
}

// debtOf aggregate booked debt of currency across pools
func (s *managerService) debtOf(ctx context.Context, currency string, shortOnly bool) (decimal.Decimal, error) {
	debts, err := s.store.ListDebts(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, d := range debts {
		if d.Currency != currency || (shortOnly && !d.Short) {
			continue
		}

		total = total.Add(d.Amount)
	}

	return total, nil
}

func (s *managerService) book(ctx context.Context, poolID, currency string, amount decimal.Decimal, short bool) error {
	debt, err := s.store.FindDebt(ctx, poolID, currency)
	if err != nil {
		return err
	}

	debt.Amount = debt.Amount.Add(amount)
	if debt.Amount.IsNegative() {
		debt.Amount = decimal.Zero
	}

	debt.Short = short
	return s.store.SaveDebt(ctx, debt)
}

// Reserve must run inside the caller's transaction, the check and the
// increment commit together with the mint
func (s *managerService) Reserve(ctx context.Context, poolID, currency string, amount decimal.Decimal, short bool) error {
	if !amount.IsPositive() {
		return nil
	}

	ceiling, err := s.ceiling(ctx, currency)
	if err != nil {
		return err
	}

	total, err := s.debtOf(ctx, currency, false)
	if err != nil {
		return err
	}

	if total.Add(amount).GreaterThan(ceiling) {
		logger.FromContext(ctx).WithField("pool", poolID).
			Infof("ceiling of %s exceeded: %s + %s > %s", currency, total, amount, ceiling)
		return core.ErrCeilingExceeded
	}

	return s.book(ctx, poolID, currency, amount, short)
}

func (s *managerService) Accrue(ctx context.Context, poolID, currency string, amount decimal.Decimal, short bool) error {
	if !amount.IsPositive() {
		return nil
	}

	return s.book(ctx, poolID, currency, amount, short)
}

func (s *managerService) Release(ctx context.Context, poolID, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}

	debt, err := s.store.FindDebt(ctx, poolID, currency)
	if err != nil {
		return err
	}

	if debt.Version == 0 {
		return nil
	}

	return s.book(ctx, poolID, currency, amount.Neg(), debt.Short)
}

func (s *managerService) TotalDebt(ctx context.Context) (map[string]decimal.Decimal, error) {
	debts, err := s.store.ListDebts(ctx)
	if err != nil {
		return nil, err
	}

	totals := map[string]decimal.Decimal{}
	for _, d := range debts {
		totals[d.Currency] = totals[d.Currency].Add(d.Amount)
	}

	return totals, nil
}

func (s *managerService) Debts(ctx context.Context) ([]*core.PoolDebt, error) {
	return s.store.ListDebts(ctx)
}

func (s *managerService) Utilization(ctx context.Context, currency string) (decimal.Decimal, error) {
	shorted, err := s.debtOf(ctx, currency, true)
	if err != nil {
		return decimal.Zero, err
	}

	issued, err := s.ledger.TotalSupply(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}

	return compound.Utilization(shorted, issued), nil
}

func (s *managerService) ShortRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	utilization, err := s.Utilization(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}

	return compound.ShortRate(settings.ShortBaseRate, settings.ShortSlope, utilization), nil
}
