package memory

import (
	"context"
	"time"

	"multicollateral/core"

	"github.com/shopspring/decimal"
)

// Fees fee store
func (db *DB) Fees() core.FeeStore {
	return &feeStore{db: db}
}

type feeStore struct {
	db *DB
}

func (s *feeStore) ReceiveFee(_ context.Context, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}

	return s.db.write(func(st *state) error {
		st.seq++
		st.fees = append(st.fees, core.Fee{
			ID:        st.seq,
			Currency:  currency,
			Amount:    amount,
			CreatedAt: time.Now(),
		})
		return nil
	})
}

func (s *feeStore) Totals(_ context.Context) (map[string]decimal.Decimal, error) {
	totals := map[string]decimal.Decimal{}
	s.db.read(func(st *state) {
		for _, f := range st.fees {
			totals[f.Currency] = totals[f.Currency].Add(f.Amount)
		}
	})

	return totals, nil
}
