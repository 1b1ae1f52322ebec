package memory

import (
	"context"
	"sort"
	"time"

	"multicollateral/core"

	"github.com/fox-one/pkg/store/db"
)

// Manager manager store
func (db *DB) Manager() core.ManagerStore {
	return &managerStore{db: db}
}

type managerStore struct {
	db *DB
}

func (s *managerStore) SavePool(_ context.Context, entry *core.PoolEntry) error {
	return s.db.write(func(st *state) error {
		if current, ok := st.entries[entry.PoolID]; ok {
			*entry = current
			return nil
		}

		entry.CreatedAt = time.Now()
		st.entries[entry.PoolID] = *entry
		return nil
	})
}

func (s *managerStore) FindPool(_ context.Context, poolID string) (*core.PoolEntry, error) {
	entry := &core.PoolEntry{}
	s.db.read(func(st *state) {
		if v, ok := st.entries[poolID]; ok {
			*entry = v
		}
	})

	return entry, nil
}

func (s *managerStore) ListPools(_ context.Context) ([]*core.PoolEntry, error) {
	var entries []*core.PoolEntry
	s.db.read(func(st *state) {
		for _, v := range st.entries {
			v := v
			entries = append(entries, &v)
		}
	})

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PoolID < entries[j].PoolID
	})
	return entries, nil
}

func (s *managerStore) DeletePool(_ context.Context, poolID string) error {
	return s.db.write(func(st *state) error {
		delete(st.entries, poolID)
		return nil
	})
}

func (s *managerStore) FindDebt(_ context.Context, poolID, currency string) (*core.PoolDebt, error) {
	debt := &core.PoolDebt{PoolID: poolID, Currency: currency}
	s.db.read(func(st *state) {
		if v, ok := st.debts[pairKey{poolID, currency}]; ok {
			*debt = v
		}
	})

	return debt, nil
}

func (s *managerStore) SaveDebt(_ context.Context, debt *core.PoolDebt) error {
	return s.db.write(func(st *state) error {
		key := pairKey{debt.PoolID, debt.Currency}
		current, ok := st.debts[key]
		if ok != (debt.Version > 0) || current.Version != debt.Version {
			return db.ErrOptimisticLock
		}

		debt.Version++
		st.debts[key] = *debt
		return nil
	})
}

func (s *managerStore) ListDebts(_ context.Context) ([]*core.PoolDebt, error) {
	var debts []*core.PoolDebt
	s.db.read(func(st *state) {
		for _, v := range st.debts {
			v := v
			debts = append(debts, &v)
		}
	})

	sort.Slice(debts, func(i, j int) bool {
		if debts[i].PoolID == debts[j].PoolID {
			return debts[i].Currency < debts[j].Currency
		}
		return debts[i].PoolID < debts[j].PoolID
	})
	return debts, nil
}

func (s *managerStore) DeleteDebts(_ context.Context, poolID string) error {
	return s.db.write(func(st *state) error {
		for k := range st.debts {
			if k.a == poolID {
				delete(st.debts, k)
			}
		}
		return nil
	})
}
