package memory

import (
	"context"
	"sort"
	"time"

	"multicollateral/core"

	"github.com/fox-one/pkg/store/db"
)

// Loans loan store
func (db *DB) Loans() core.LoanStore {
	return &loanStore{db: db}
}

type loanStore struct {
	db *DB
}

func (s *loanStore) Create(_ context.Context, loan *core.Loan) error {
	return s.db.write(func(st *state) error {
		var last uint64
		for k := range st.loans {
			if k.pool == loan.PoolID && k.id > last {
				last = k.id
			}
		}

		now := time.Now()
		loan.ID = last + 1
		loan.Version = 1
		loan.CreatedAt = now
		loan.UpdatedAt = now
		st.loans[loanKey{loan.PoolID, loan.ID}] = *loan
		return nil
	})
}

func (s *loanStore) Find(_ context.Context, poolID string, id uint64) (*core.Loan, error) {
	loan := &core.Loan{}
	s.db.read(func(st *state) {
		if v, ok := st.loans[loanKey{poolID, id}]; ok {
			*loan = v
		}
	})

	return loan, nil
}

func (s *loanStore) filter(match func(l *core.Loan) bool) []*core.Loan {
	var loans []*core.Loan
	s.db.read(func(st *state) {
		for _, v := range st.loans {
			v := v
			if match(&v) {
				loans = append(loans, &v)
			}
		}
	})

	sort.Slice(loans, func(i, j int) bool {
		return loans[i].ID < loans[j].ID
	})
	return loans
}

func (s *loanStore) FindByAccount(_ context.Context, poolID, account string) ([]*core.Loan, error) {
	return s.filter(func(l *core.Loan) bool {
		return l.PoolID == poolID && l.Account == account
	}), nil
}

func (s *loanStore) ListOpen(_ context.Context, poolID string, from uint64, limit int) ([]*core.Loan, error) {
	loans := s.filter(func(l *core.Loan) bool {
		return l.PoolID == poolID && l.IsOpen() && l.ID > from
	})

	if limit > 0 && len(loans) > limit {
		loans = loans[:limit]
	}

	return loans, nil
}

func (s *loanStore) CountOpen(ctx context.Context, poolID string) (int64, error) {
	loans := s.filter(func(l *core.Loan) bool {
		return l.PoolID == poolID && l.IsOpen()
	})

	return int64(len(loans)), nil
}

func (s *loanStore) Update(_ context.Context, loan *core.Loan) error {
	return s.db.write(func(st *state) error {
		key := loanKey{loan.PoolID, loan.ID}
		current, ok := st.loans[key]
		if !ok || current.Version != loan.Version {
			return db.ErrOptimisticLock
		}

		loan.Version++
		loan.UpdatedAt = time.Now()
		st.loans[key] = *loan
		return nil
	})
}
