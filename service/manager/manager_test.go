package manager

import (
	"context"
	"testing"

	"multicollateral/core"
	"multicollateral/pkg/concurrency"
	"multicollateral/pkg/number"
	"multicollateral/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct {
	id   string
	open int64
}

func (r *fakeReporter) PoolID() string { return r.id }

func (r *fakeReporter) OpenLoans(_ context.Context) (int64, error) { return r.open, nil }

func (r *fakeReporter) TotalDebt(_ context.Context) (map[string]decimal.Decimal, error) {
	return map[string]decimal.Decimal{}, nil
}

type fixture struct {
	db      *memory.DB
	manager core.ManagerService
}

func newFixture() *fixture {
	db := memory.New()
	return &fixture{
		db: db,
		manager: New(
			db.Manager(),
			db.Balances(),
			db.Properties(),
			db.Transactor(),
			concurrency.NewLane(),
			core.ManagerSettings{
				DebtCeiling:   decimal.NewFromInt(1000),
				Ceilings:      map[string]decimal.Decimal{"sBTC": decimal.NewFromInt(2)},
				ShortBaseRate: number.Decimal("0.05"),
				ShortSlope:    number.Decimal("0.5"),
			},
		),
	}
}

func testPool(id string, kind core.CollateralKind) *core.Pool {
	return &core.Pool{
		ID:                 id,
		Kind:               kind,
		CollateralCurrency: "ETH",
		Currencies:         []string{"sUSD", "sBTC"},
		MinCollateralRatio: number.Decimal("1.5"),
		LiquidationPenalty: number.Decimal("0.1"),
	}
}

func TestAddRemovePool(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	reporter := &fakeReporter{id: "eth", open: 1}
	require.NoError(t, f.manager.AddPool(ctx, testPool("eth", core.KindNative), reporter))
	require.NoError(t, f.manager.AddPool(ctx, testPool("eth", core.KindNative), reporter), "re-adding is idempotent")

	active, err := f.manager.IsActive(ctx, "eth")
	require.NoError(t, err)
	assert.True(t, active)

	pools, _ := f.manager.Pools(ctx)
	assert.Len(t, pools, 1)

	require.NoError(t, f.db.Transactor().Tx(ctx, func(ctx context.Context) error {
		return f.manager.Reserve(ctx, "eth", "sUSD", decimal.NewFromInt(100), false)
	}))

	assert.ErrorIs(t, f.manager.RemovePool(ctx, "eth"), core.ErrPoolHasOpenLoans)

	reporter.open = 0
	require.NoError(t, f.manager.RemovePool(ctx, "eth"))

	active, _ = f.manager.IsActive(ctx, "eth")
	assert.False(t, active)

	totals, _ := f.manager.TotalDebt(ctx)
	assert.True(t, totals["sUSD"].IsZero(), "removed pool's debt contribution is zeroed")

	assert.ErrorIs(t, f.manager.RemovePool(ctx, "eth"), core.ErrPoolNotFound)
}

func TestAddPoolInvalid(t *testing.T) {
	f := newFixture()
	pool := testPool("eth", core.KindNative)
	pool.LiquidationPenalty = number.Decimal("0.6")

	err := f.manager.AddPool(context.Background(), pool, &fakeReporter{id: "eth"})
	assert.ErrorIs(t, err, core.ErrInvalidPoolParams)
}

func TestDebtCeilingAcrossPools(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	require.NoError(t, f.manager.Reserve(ctx, "eth", "sUSD", decimal.NewFromInt(600), false))
	require.NoError(t, f.manager.Reserve(ctx, "btc", "sUSD", decimal.NewFromInt(400), false))
	assert.ErrorIs(t, f.manager.Reserve(ctx, "btc", "sUSD", number.Decimal("0.000000000000000001"), false), core.ErrCeilingExceeded)

	// realized interest is booked even past the ceiling
	require.NoError(t, f.manager.Accrue(ctx, "eth", "sUSD", decimal.NewFromInt(5), false))

	require.NoError(t, f.manager.Release(ctx, "eth", "sUSD", decimal.NewFromInt(105)))
	require.NoError(t, f.manager.Reserve(ctx, "btc", "sUSD", decimal.NewFromInt(100), false))

	totals, err := f.manager.TotalDebt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1000", totals["sUSD"].String())

	// per currency override
	assert.ErrorIs(t, f.manager.Reserve(ctx, "eth", "sBTC", decimal.NewFromInt(3), false), core.ErrCeilingExceeded)
	require.NoError(t, f.manager.SetSetting(ctx, "ceiling:sBTC", decimal.NewFromInt(5)))
	require.NoError(t, f.manager.Reserve(ctx, "eth", "sBTC", decimal.NewFromInt(3), false))
}

func TestReserveRollsBackWithCaller(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	err := f.db.Transactor().Tx(ctx, func(ctx context.Context) error {
		if err := f.manager.Reserve(ctx, "eth", "sUSD", decimal.NewFromInt(600), false); err != nil {
			return err
		}

		return f.manager.Reserve(ctx, "eth", "sUSD", decimal.NewFromInt(600), false)
	})
	assert.ErrorIs(t, err, core.ErrCeilingExceeded)

	totals, _ := f.manager.TotalDebt(ctx)
	assert.True(t, totals["sUSD"].IsZero())
}

func TestReleaseNeverNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	require.NoError(t, f.manager.Release(ctx, "eth", "sUSD", decimal.NewFromInt(10)))
	require.NoError(t, f.manager.Reserve(ctx, "eth", "sUSD", decimal.NewFromInt(10), false))
	require.NoError(t, f.manager.Release(ctx, "eth", "sUSD", decimal.NewFromInt(20)))

	debts, _ := f.manager.Debts(ctx)
	require.Len(t, debts, 1)
	assert.True(t, debts[0].Amount.IsZero())
}

func TestShortRate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	balances := f.db.Balances()

	rate, err := f.manager.ShortRate(ctx, "sBTC")
	require.NoError(t, err)
	assert.Equal(t, "0.05", rate.String(), "nothing issued")

	require.NoError(t, balances.Mint(ctx, "alice", "sBTC", decimal.NewFromInt(4)))
	require.NoError(t, f.manager.Reserve(ctx, "short", "sBTC", decimal.NewFromInt(1), true))
	// long debt does not count as shorted
	require.NoError(t, f.manager.Reserve(ctx, "eth", "sBTC", decimal.NewFromInt(1), false))

	u, err := f.manager.Utilization(ctx, "sBTC")
	require.NoError(t, err)
	assert.Equal(t, "0.25", u.String())

	rate, err = f.manager.ShortRate(ctx, "sBTC")
	require.NoError(t, err)
	assert.Equal(t, "0.175", rate.String())

	require.NoError(t, f.manager.SetSetting(ctx, "short_slope", decimal.NewFromInt(1)))
	rate, _ = f.manager.ShortRate(ctx, "sBTC")
	assert.Equal(t, "0.3", rate.String())
}

func TestSetSettingValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	assert.ErrorIs(t, f.manager.SetSetting(ctx, "bogus", decimal.NewFromInt(1)), core.ErrInputInvalid)
	assert.ErrorIs(t, f.manager.SetSetting(ctx, "ceiling:", decimal.NewFromInt(1)), core.ErrInputInvalid)
	assert.ErrorIs(t, f.manager.SetSetting(ctx, "debt_ceiling", decimal.NewFromInt(-1)), core.ErrInputInvalid)

	require.NoError(t, f.manager.SetSetting(ctx, "debt_ceiling", decimal.NewFromInt(5)))
	settings, err := f.manager.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5", settings.DebtCeiling.String())
	assert.Equal(t, "2", settings.Ceilings["sBTC"].String())
}
