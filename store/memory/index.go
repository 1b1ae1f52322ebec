package memory

import (
	"context"
	"sort"

	"multicollateral/core"

	"github.com/fox-one/pkg/store/db"
)

// Indexes interest index store
func (db *DB) Indexes() core.IndexStore {
	return &indexStore{db: db}
}

type indexStore struct {
	db *DB
}

func (s *indexStore) Find(_ context.Context, poolID, currency string) (*core.InterestIndex, error) {
	index := &core.InterestIndex{PoolID: poolID, Currency: currency}
	s.db.read(func(st *state) {
		if v, ok := st.indexes[pairKey{poolID, currency}]; ok {
			*index = v
		}
	})

	return index, nil
}

func (s *indexStore) Save(_ context.Context, index *core.InterestIndex) error {
	return s.db.write(func(st *state) error {
		key := pairKey{index.PoolID, index.Currency}
		current, ok := st.indexes[key]
		if ok != (index.Version > 0) || current.Version != index.Version {
			return db.ErrOptimisticLock
		}

		index.Version++
		st.indexes[key] = *index
		return nil
	})
}

func (s *indexStore) ListByPool(_ context.Context, poolID string) ([]*core.InterestIndex, error) {
	var indexes []*core.InterestIndex
	s.db.read(func(st *state) {
		for _, v := range st.indexes {
			v := v
			if v.PoolID == poolID {
				indexes = append(indexes, &v)
			}
		}
	})

	sort.Slice(indexes, func(i, j int) bool {
		return indexes[i].Currency < indexes[j].Currency
	})
	return indexes, nil
}
