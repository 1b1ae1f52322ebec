package pool

import (
	"context"
	"fmt"
	"time"

	"multicollateral/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache pool configs change rarely and are read by every operation
func Cache(store core.PoolStore, exp time.Duration) core.PoolStore {
	return &cachePoolStore{
		PoolStore: store,
		cache:     gcache.New(256).LRU().Expiration(exp).Build(),
		sf:        &singleflight.Group{},
	}
}

type cachePoolStore struct {
	core.PoolStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cachePoolStore) Save(ctx context.Context, pool *core.Pool) error {
	if err := s.PoolStore.Save(ctx, pool); err != nil {
		return err
	}

	s.cache.Remove(s.poolKey(pool.ID))
	return nil
}

func (s *cachePoolStore) Update(ctx context.Context, pool *core.Pool) error {
	if err := s.PoolStore.Update(ctx, pool); err != nil {
		return err
	}

	s.cache.Remove(s.poolKey(pool.ID))
	return nil
}

func (s *cachePoolStore) Find(ctx context.Context, id string) (*core.Pool, error) {
	key := s.poolKey(id)
	if v, err := s.cache.Get(key); err == nil {
		if pool, ok := v.(*core.Pool); ok {
			cp := *pool
			return &cp, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		pool, err := s.PoolStore.Find(ctx, id)
		if err != nil {
			return nil, err
		}

		if pool.ID != "" {
			_ = s.cache.Set(key, pool)
		}

		return pool, nil
	})
	if err != nil {
		return nil, err
	}

	cp := *(v.(*core.Pool))
	return &cp, nil
}

func (s *cachePoolStore) poolKey(id string) string {
	return fmt.Sprintf("pool:id:%s", id)
}
