package liquidator

import (
	"context"
	"errors"
	"time"

	"multicollateral/core"
	"multicollateral/worker"

	"github.com/fox-one/pkg/logger"
)

const batch = 200

// Liquidator scans open loans and reports the undercollateralized ones. It
// never liquidates by itself.
type Liquidator struct {
	worker.TickWorker
	pools core.PoolDirectory
}

// New new liquidation scanner
func New(pools core.PoolDirectory, interval time.Duration) *Liquidator {
	return &Liquidator{
		TickWorker: worker.TickWorker{
			Delay:    interval,
			ErrDelay: interval,
		},
		pools: pools,
	}
}

// Run run worker
func (w *Liquidator) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		_, err := w.Scan(ctx)
		return err
	})
}

// Scan positions that can be liquidated right now
func (w *Liquidator) Scan(ctx context.Context) ([]*core.Position, error) {
	log := logger.FromContext(ctx).WithField("worker", "liquidator")

	services, err := w.pools.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("list pools")
		return nil, err
	}

	var found []*core.Position
	for _, svc := range services {
		positions, err := w.scan(ctx, svc)
		if err != nil {
			log.WithError(err).Errorln("scan", svc.PoolID())
			return nil, err
		}

		found = append(found, positions...)
	}

	return found, nil
}

func (w *Liquidator) scan(ctx context.Context, svc core.PoolService) ([]*core.Position, error) {
	log := logger.FromContext(ctx).WithField("worker", "liquidator").WithField("pool", svc.PoolID())

	var (
		found []*core.Position
		from  uint64
	)

	for {
		loans, err := svc.ListOpen(ctx, from, batch)
		if err != nil {
			return nil, err
		}

		for _, loan := range loans {
			from = loan.ID

			pos, err := svc.Position(ctx, loan.ID)
			if errors.Is(err, core.ErrStalePrice) {
				log.WithError(err).Debugln("skip loan", loan.ID)
				continue
			} else if err != nil {
				return nil, err
			}

			if pos.Liquidatable {
				log.Infof("loan %d of %s liquidatable: ratio %s, repay %s %s",
					loan.ID, loan.Account, pos.Ratio.StringFixed(4), pos.LiquidationAmount, loan.Currency)
				found = append(found, pos)
			}
		}

		if len(loans) < batch {
			return found, nil
		}
	}
}
