package oracle

import (
	"context"
	"strings"
	"time"

	"multicollateral/core"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type priceOracle struct {
	prices core.IPriceStore
	quote  string
	maxAge time.Duration
	clock  func() time.Time
}

// NewOracle rates from the latest stored prices. The quote currency is always
// fresh at 1.
func NewOracle(prices core.IPriceStore, quote string, maxAge time.Duration) core.PriceOracle {
	return &priceOracle{
		prices: prices,
		quote:  quote,
		maxAge: maxAge,
		clock:  time.Now,
	}
}

func (o *priceOracle) Rate(ctx context.Context, currency string) (decimal.Decimal, bool, error) {
	if strings.EqualFold(currency, o.quote) {
		return decimal.New(1, 0), false, nil
	}

	price, err := o.prices.Latest(ctx, currency)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("prices.Latest", currency)
		return decimal.Zero, true, err
	}

	if price.ID == 0 || !price.Price.IsPositive() {
		return decimal.Zero, true, nil
	}

	stale := o.clock().Sub(price.CreatedAt) > o.maxAge
	return price.Price, stale, nil
}
