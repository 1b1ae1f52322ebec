package priceoracle

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"multicollateral/core"
	"multicollateral/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Config price worker config
type Config struct {
	Interval time.Duration
	// currency every other is quoted in, never pulled
	Quote string
	// prices older than this are deleted
	Retention time.Duration
	// concurrent pulls
	Capacity int64
}

// Worker pulls tickers of every currency the pools touch and stores them
type Worker struct {
	worker.TickWorker
	pools  core.PoolStore
	prices core.IPriceStore
	feed   core.IPriceFeedService
	cfg    Config
	clock  func() time.Time
}

// New new price worker
func New(pools core.PoolStore, prices core.IPriceStore, feed core.IPriceFeedService, cfg Config) *Worker {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 4
	}

	return &Worker{
		TickWorker: worker.TickWorker{
			Delay:    cfg.Interval,
			ErrDelay: cfg.Interval,
		},
		pools:  pools,
		prices: prices,
		feed:   feed,
		cfg:    cfg,
		clock:  time.Now,
	}
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

// currencies collateral and lendable currencies of every pool, quote excluded
func (w *Worker) currencies(ctx context.Context) ([]string, error) {
	pools, err := w.pools.All(ctx)
	if err != nil {
		return nil, err
	}

	set := map[string]bool{}
	for _, pool := range pools {
		set[pool.CollateralCurrency] = true
		for _, c := range pool.Currencies {
			set[c] = true
		}
	}

	currencies := make([]string, 0, len(set))
	for c := range set {
		if !strings.EqualFold(c, w.cfg.Quote) {
			currencies = append(currencies, c)
		}
	}

	sort.Strings(currencies)
	return currencies, nil
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "priceoracle")

	currencies, err := w.currencies(ctx)
	if err != nil {
		log.WithError(err).Errorln("list currencies")
		return err
	}

	now := w.clock()
	sem := semaphore.NewWeighted(w.cfg.Capacity)
	var g errgroup.Group

	for idx := range currencies {
		currency := currencies[idx]

		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		g.Go(func() error {
			defer sem.Release(1)
			return w.pull(ctx, currency, now)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if w.cfg.Retention > 0 {
		if err := w.prices.DeleteBefore(ctx, now.Add(-w.cfg.Retention)); err != nil {
			log.WithError(err).Errorln("prices.DeleteBefore")
			return err
		}
	}

	return nil
}

func (w *Worker) pull(ctx context.Context, currency string, now time.Time) error {
	log := logger.FromContext(ctx).WithField("worker", "priceoracle").WithField("currency", currency)

	ticker, err := w.feed.PullPriceTicker(ctx, currency, now)
	if err != nil {
		log.WithError(err).Errorln("pull price ticker")
		return err
	}

	if ticker.Price.LessThanOrEqual(decimal.Zero) {
		// keep the old price, the oracle reports it stale once it ages out
		log.Errorln("invalid ticker price:", ticker.Price)
		return nil
	}

	content, err := json.Marshal(ticker)
	if err != nil {
		return err
	}

	price := &core.Price{
		Currency:  currency,
		Price:     ticker.Price,
		Provider:  ticker.Provider,
		Content:   content,
		CreatedAt: now,
	}

	if err := w.prices.Create(ctx, price); err != nil {
		log.WithError(err).Errorln("prices.Create")
		return err
	}

	return nil
}
