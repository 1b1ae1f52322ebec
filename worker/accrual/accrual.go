package accrual

import (
	"context"
	"time"

	"multicollateral/core"
	"multicollateral/worker"

	"github.com/fox-one/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Accrual keeps every active pool's interest index close to now, so views
// and the manager's debt report don't drift between operations
type Accrual struct {
	worker.TickWorker
	pools   core.PoolDirectory
	manager core.PoolRegistry
}

// New new accrual worker
func New(pools core.PoolDirectory, manager core.PoolRegistry, interval time.Duration) *Accrual {
	return &Accrual{
		TickWorker: worker.TickWorker{
			Delay:    interval,
			ErrDelay: interval,
		},
		pools:   pools,
		manager: manager,
	}
}

// Run run worker
func (w *Accrual) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Accrual) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "accrual")

	services, err := w.pools.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("list pools")
		return err
	}

	var g errgroup.Group
	for idx := range services {
		svc := services[idx]

		active, err := w.manager.IsActive(ctx, svc.PoolID())
		if err != nil {
			log.WithError(err).Errorln("IsActive", svc.PoolID())
			return err
		}

		if !active {
			continue
		}

		g.Go(func() error {
			if err := svc.Checkpoint(ctx); err != nil {
				log.WithError(err).Errorln("checkpoint", svc.PoolID())
				return err
			}

			return nil
		})
	}

	return g.Wait()
}
