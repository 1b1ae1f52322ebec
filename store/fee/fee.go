package fee

import (
	"context"

	"multicollateral/core"
	"multicollateral/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type feeStore struct {
	db *db.DB
}

// New new fee store
func New(db *db.DB) core.FeeStore {
	return &feeStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Fee{})
		if err := tx.AutoMigrate(core.Fee{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *feeStore) ReceiveFee(ctx context.Context, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}

	return store.Session(ctx, s.db).Update().Create(&core.Fee{
		Currency: currency,
		Amount:   amount,
	}).Error
}

func (s *feeStore) Totals(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := store.Session(ctx, s.db).View().Model(core.Fee{}).
		Select("currency, SUM(amount)").
		Group("currency").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[string]decimal.Decimal{}
	for rows.Next() {
		var (
			currency string
			amount   decimal.Decimal
		)
		if err := rows.Scan(&currency, &amount); err != nil {
			return nil, err
		}

		totals[currency] = amount
	}

	return totals, rows.Err()
}
