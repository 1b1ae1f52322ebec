package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"multicollateral/core"
	"multicollateral/store/balance"

	"github.com/shopspring/decimal"
)

// Balances synthetic ledger and collateral vault
func (db *DB) Balances() balance.Store {
	return &balanceStore{db: db}
}

type balanceStore struct {
	db *DB
}

func add(st *state, account, currency string, amount decimal.Decimal) error {
	key := pairKey{account, currency}
	b, ok := st.balances[key]
	if !ok {
		b = core.Balance{Account: account, Currency: currency, Amount: decimal.Zero}
	}

	b.Amount = b.Amount.Add(amount)
	if b.Amount.IsNegative() {
		return fmt.Errorf("%s %s: %w", account, currency, core.ErrInsufficientBalance)
	}

	b.Version++
	b.UpdatedAt = time.Now()
	st.balances[key] = b
	return nil
}

func (s *balanceStore) Mint(_ context.Context, account, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}

	return s.db.write(func(st *state) error {
		return add(st, account, currency, amount)
	})
}

func (s *balanceStore) Burn(_ context.Context, account, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}

	return s.db.write(func(st *state) error {
		return add(st, account, currency, amount.Neg())
	})
}

func (s *balanceStore) TotalSupply(_ context.Context, currency string) (decimal.Decimal, error) {
	total := decimal.Zero
	s.db.read(func(st *state) {
		for k, v := range st.balances {
			if k.b == currency {
				total = total.Add(v.Amount)
			}
		}
	})

	return total, nil
}

func (s *balanceStore) Transfer(_ context.Context, from, to, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() || from == to {
		return nil
	}

	return s.db.write(func(st *state) error {
		if err := add(st, from, currency, amount.Neg()); err != nil {
			return err
		}

		return add(st, to, currency, amount)
	})
}

func (s *balanceStore) BalanceOf(_ context.Context, account, currency string) (decimal.Decimal, error) {
	amount := decimal.Zero
	s.db.read(func(st *state) {
		if v, ok := st.balances[pairKey{account, currency}]; ok {
			amount = v.Amount
		}
	})

	return amount, nil
}

func (s *balanceStore) List(_ context.Context, account string) ([]*core.Balance, error) {
	var balances []*core.Balance
	s.db.read(func(st *state) {
		for k, v := range st.balances {
			v := v
			if k.a == account {
				balances = append(balances, &v)
			}
		}
	})

	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Currency < balances[j].Currency
	})
	return balances, nil
}
