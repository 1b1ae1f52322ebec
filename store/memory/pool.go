package memory

import (
	"context"
	"sort"
	"time"

	"multicollateral/core"

	"github.com/fox-one/pkg/store/db"
)

// Pools pool store
func (db *DB) Pools() core.PoolStore {
	return &poolStore{db: db}
}

type poolStore struct {
	db *DB
}

func copyPool(p core.Pool) *core.Pool {
	p.Currencies = append(p.Currencies[:0:0], p.Currencies...)
	return &p
}

func (s *poolStore) Save(_ context.Context, pool *core.Pool) error {
	return s.db.write(func(st *state) error {
		if current, ok := st.pools[pool.ID]; ok {
			*pool = *copyPool(current)
			return nil
		}

		now := time.Now()
		pool.CreatedAt = now
		pool.UpdatedAt = now
		st.pools[pool.ID] = *copyPool(*pool)
		return nil
	})
}

func (s *poolStore) Find(_ context.Context, id string) (*core.Pool, error) {
	pool := &core.Pool{}
	s.db.read(func(st *state) {
		if v, ok := st.pools[id]; ok {
			pool = copyPool(v)
		}
	})

	return pool, nil
}

func (s *poolStore) All(_ context.Context) ([]*core.Pool, error) {
	var pools []*core.Pool
	s.db.read(func(st *state) {
		for _, v := range st.pools {
			pools = append(pools, copyPool(v))
		}
	})

	sort.Slice(pools, func(i, j int) bool {
		return pools[i].ID < pools[j].ID
	})
	return pools, nil
}

func (s *poolStore) Update(_ context.Context, pool *core.Pool) error {
	return s.db.write(func(st *state) error {
		current, ok := st.pools[pool.ID]
		if !ok || current.Version != pool.Version {
			return db.ErrOptimisticLock
		}

		pool.Version++
		pool.UpdatedAt = time.Now()
		st.pools[pool.ID] = *copyPool(*pool)
		return nil
	})
}
