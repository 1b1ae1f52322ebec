package pool

import (
	"context"
	"sync"

	"multicollateral/core"
	"multicollateral/pkg/compound"
	"multicollateral/pkg/concurrency"

	"github.com/fox-one/pkg/logger"
)

// Factory builds the service of one pool
type Factory func(poolID string) core.PoolService

type directory struct {
	pools    core.PoolStore
	manager  core.ManagerService
	tx       core.Transactor
	lane     *concurrency.Lane
	build    Factory
	mu       sync.Mutex
	services map[string]core.PoolService
}

// NewDirectory pool services are built once and cached
func NewDirectory(
	pools core.PoolStore,
	manager core.ManagerService,
	tx core.Transactor,
	lane *concurrency.Lane,
	build Factory,
) core.PoolDirectory {
	return &directory{
		pools:    pools,
		manager:  manager,
		tx:       tx,
		lane:     lane,
		build:    build,
		services: map[string]core.PoolService{},
	}
}

func (d *directory) service(poolID string) core.PoolService {
	d.mu.Lock()
	defer d.mu.Unlock()

	svc, ok := d.services[poolID]
	if !ok {
		svc = d.build(poolID)
		d.services[poolID] = svc
	}

	return svc
}

func (d *directory) Get(ctx context.Context, poolID string) (core.PoolService, error) {
	pool, err := d.pools.Find(ctx, poolID)
	if err != nil {
		return nil, err
	}

	if pool.ID == "" {
		return nil, core.ErrPoolNotFound
	}

	return d.service(pool.ID), nil
}

func (d *directory) All(ctx context.Context) ([]core.PoolService, error) {
	pools, err := d.pools.All(ctx)
	if err != nil {
		return nil, err
	}

	services := make([]core.PoolService, 0, len(pools))
	for _, pool := range pools {
		services = append(services, d.service(pool.ID))
	}

	return services, nil
}

func (d *directory) Add(ctx context.Context, pool *core.Pool) (core.PoolService, error) {
	if err := compound.ValidatePoolParams(pool); err != nil {
		return nil, err
	}

	err := d.lane.Do(ctx, func() error {
		return d.tx.Tx(ctx, func(ctx context.Context) error {
			current, err := d.pools.Find(ctx, pool.ID)
			if err != nil {
				return err
			}

			if current.ID != "" && current.Kind != pool.Kind {
				return core.ErrInvalidPoolParams
			}

			return d.pools.Save(ctx, pool)
		})
	})
	if err != nil {
		return nil, err
	}

	svc := d.service(pool.ID)
	if err := d.manager.AddPool(ctx, pool, svc); err != nil {
		return nil, err
	}

	return svc, nil
}

// Update kind and collateral currency are fixed once a pool exists
func (d *directory) Update(ctx context.Context, pool *core.Pool) error {
	if err := compound.ValidatePoolParams(pool); err != nil {
		return err
	}

	return d.lane.Do(ctx, func() error {
		return d.tx.Tx(ctx, func(ctx context.Context) error {
			current, err := d.pools.Find(ctx, pool.ID)
			if err != nil {
				return err
			}

			if current.ID == "" {
				return core.ErrPoolNotFound
			}

			if current.Kind != pool.Kind || current.CollateralCurrency != pool.CollateralCurrency {
				return core.ErrInvalidPoolParams
			}

			pool.Version = current.Version
			if err := d.pools.Update(ctx, pool); err != nil {
				return err
			}

			logger.FromContext(ctx).WithField("pool", pool.ID).Infoln("pool updated")
			return nil
		})
	})
}

// Attach re-registers every stored pool that the manager still lists, so
// reporters are in place after a restart
func Attach(ctx context.Context, dir core.PoolDirectory, manager core.ManagerService) error {
	services, err := dir.All(ctx)
	if err != nil {
		return err
	}

	for _, svc := range services {
		active, err := manager.IsActive(ctx, svc.PoolID())
		if err != nil {
			return err
		}

		if !active {
			continue
		}

		pool, err := svc.Pool(ctx)
		if err != nil {
			return err
		}

		if err := manager.AddPool(ctx, pool, svc); err != nil {
			return err
		}
	}

	return nil
}
