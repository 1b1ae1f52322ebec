// Package memory keeps every store in process memory. Used by tests and by
// the --memory flag of the server.
package memory

import (
	"context"
	"sync"

	"multicollateral/core"
)

type loanKey struct {
	pool string
	id   uint64
}

type pairKey struct {
	a, b string
}

type state struct {
	pools      map[string]core.Pool
	loans      map[loanKey]core.Loan
	indexes    map[pairKey]core.InterestIndex
	entries    map[string]core.PoolEntry
	debts      map[pairKey]core.PoolDebt
	balances   map[pairKey]core.Balance
	properties map[string]string
	prices     []core.Price
	fees       []core.Fee
	seq        int64
}

func newState() *state {
	return &state{
		pools:      map[string]core.Pool{},
		loans:      map[loanKey]core.Loan{},
		indexes:    map[pairKey]core.InterestIndex{},
		entries:    map[string]core.PoolEntry{},
		debts:      map[pairKey]core.PoolDebt{},
		balances:   map[pairKey]core.Balance{},
		properties: map[string]string{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.pools {
		v.Currencies = append(v.Currencies[:0:0], v.Currencies...)
		c.pools[k] = v
	}
	for k, v := range s.loans {
		c.loans[k] = v
	}
	for k, v := range s.indexes {
		c.indexes[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.debts {
		c.debts[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.properties {
		c.properties[k] = v
	}
	c.prices = append(c.prices, s.prices...)
	c.fees = append(c.fees, s.fees...)
	c.seq = s.seq
	return c
}

// DB in-memory state shared by the memory stores
type DB struct {
	mu sync.RWMutex
	st *state
	// serializes transactions
	txMu sync.Mutex
}

// New new empty memory db
func New() *DB {
	return &DB{st: newState()}
}

func (db *DB) read(fn func(st *state)) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	fn(db.st)
}

func (db *DB) write(fn func(st *state) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.st)
}

type txKey struct{}

// Transactor snapshot the whole state before fn and restore it when fn fails
func (db *DB) Transactor() core.Transactor {
	return transactor{db: db}
}

type transactor struct {
	db *DB
}

func (t transactor) Tx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.db.txMu.Lock()
	defer t.db.txMu.Unlock()

	var snapshot *state
	t.db.read(func(st *state) {
		snapshot = st.clone()
	})

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		_ = t.db.write(func(st *state) error {
			t.db.st = snapshot
			return nil
		})
		return err
	}

	return nil
}
