package priceoracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"multicollateral/core"
	"multicollateral/pkg/number"
	"multicollateral/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	prices map[string]string
}

func (f *fakeFeed) PullPriceTicker(_ context.Context, symbol string, _ time.Time) (*core.PriceTicker, error) {
	v, ok := f.prices[symbol]
	if !ok {
		return nil, errors.New("no ticker")
	}

	return &core.PriceTicker{Provider: "feed", Symbol: symbol, Price: number.Decimal(v)}, nil
}

func TestOnWork(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	require.NoError(t, db.Pools().Save(ctx, &core.Pool{
		ID:                 "eth",
		Kind:               core.KindNative,
		CollateralCurrency: "ETH",
		Currencies:         []string{"sUSD", "sBTC"},
	}))

	feed := &fakeFeed{prices: map[string]string{"ETH": "2000", "sBTC": "0"}}
	w := New(db.Pools(), db.Prices(), feed, Config{Quote: "sUSD", Retention: time.Hour})

	now := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	w.clock = func() time.Time { return now }

	currencies, err := w.currencies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ETH", "sBTC"}, currencies)

	require.NoError(t, w.onWork(ctx))

	eth, err := db.Prices().Latest(ctx, "ETH")
	require.NoError(t, err)
	assert.Equal(t, "2000", eth.Price.String())
	assert.Equal(t, now, eth.CreatedAt)
	assert.Contains(t, eth.Content.String(), `"symbol":"ETH"`)

	btc, err := db.Prices().Latest(ctx, "sBTC")
	require.NoError(t, err)
	assert.Equal(t, int64(0), btc.ID, "non positive prices are dropped")

	delete(feed.prices, "ETH")
	assert.Error(t, w.onWork(ctx))

	feed.prices["ETH"] = "2100"
	now = now.Add(2 * time.Hour)
	require.NoError(t, w.onWork(ctx))
	eth, _ = db.Prices().Latest(ctx, "ETH")
	assert.True(t, eth.Price.Equal(decimal.NewFromInt(2100)))
}
