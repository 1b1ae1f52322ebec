package cmd

import (
	"context"
	"time"

	"multicollateral/service/pool"
	"multicollateral/worker"
	"multicollateral/worker/accrual"
	"multicollateral/worker/liquidator"
	"multicollateral/worker/priceoracle"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func seconds(n int64) time.Duration {
	return time.Duration(n) * time.Second
}

func runWorkers(ctx context.Context, e *engine) error {
	workers := []worker.Worker{
		accrual.New(e.pools, e.manager, seconds(cfg.Worker.AccrualInterval)),
		liquidator.New(e.pools, seconds(cfg.Worker.LiquidateInterval)),
	}

	if cfg.Oracle.EndPoint != "" {
		workers = append(workers, priceoracle.New(e.stores.pools, e.prices, providePriceFeedService(), priceoracle.Config{
			Interval:  seconds(cfg.Worker.PriceInterval),
			Quote:     cfg.App.QuoteCurrency,
			Retention: 24 * time.Hour,
		}))
	}

	g, ctx := errgroup.WithContext(ctx)
	for idx := range workers {
		w := workers[idx]
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	return g.Wait()
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "multicollateral job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := signal.WithContext(cmd.Context())
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		e := provideEngine()
		if err := pool.Attach(ctx, e.pools, e.manager); err != nil {
			log.WithError(err).Fatal("attach pools")
		}

		if err := runWorkers(ctx, e); err != nil && err != context.Canceled {
			log.WithError(err).Errorln("worker stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
