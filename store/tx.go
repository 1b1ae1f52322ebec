package store

import (
	"context"

	"multicollateral/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type txKey struct{}

// WithTx ctx carrying a running transaction
func WithTx(ctx context.Context, tx *db.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// Session the transaction running in ctx, or fallback when there is none
func Session(ctx context.Context, fallback *db.DB) *db.DB {
	if tx, ok := ctx.Value(txKey{}).(*db.DB); ok && tx != nil {
		return tx
	}

	return fallback
}

// IsErrNotFound record not found
func IsErrNotFound(err error) bool {
	return store.IsErrNotFound(err)
}

type transactor struct {
	db *db.DB
}

// NewTransactor new gorm transactor, nested calls join the outer transaction
func NewTransactor(db *db.DB) core.Transactor {
	return &transactor{db: db}
}

func (t *transactor) Tx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*db.DB); ok {
		return fn(ctx)
	}

	return t.db.Tx(func(tx *db.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
