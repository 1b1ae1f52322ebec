package oracle

import (
	"context"
	"fmt"
	"time"

	"multicollateral/core"
	"multicollateral/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
)

// PriceService price feed service
type PriceService struct {
	Config *core.Config
}

// New new price feed service
func New(config *core.Config) core.IPriceFeedService {
	return &PriceService{
		Config: config,
	}
}

// PullPriceTicker pull price ticker
func (s *PriceService) PullPriceTicker(ctx context.Context, symbol string, t time.Time) (*core.PriceTicker, error) {
	url := fmt.Sprintf("%s/api/v2/tickers/%s?ts=%d", s.Config.Oracle.EndPoint, symbol, t.UTC().Unix())
	logger.FromContext(ctx).Debugln("pull price:", url)

	var price core.PriceTicker
	if _, err := resthttp.Execute(resthttp.Request(ctx), "GET", url, nil, &price); err != nil {
		return nil, err
	}

	if price.Symbol == "" {
		price.Symbol = symbol
	}

	return &price, nil
}
