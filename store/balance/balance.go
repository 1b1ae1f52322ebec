package balance

import (
	"context"
	"fmt"

	"multicollateral/core"
	"multicollateral/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Store synthetic ledger and collateral vault over one balances table
type Store interface {
	core.SyntheticLedger
	core.CollateralVault
	List(ctx context.Context, account string) ([]*core.Balance, error)
}

type balanceStore struct {
	db *db.DB
}

// New new balance store
func New(db *db.DB) Store {
	return &balanceStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Balance{})
		if err := tx.AutoMigrate(core.Balance{}).Error; err != nil {
			return err
		}

		if err := tx.AddIndex("idx_balances_currency", "currency").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *balanceStore) find(ctx context.Context, account, currency string) (*core.Balance, error) {
	var balance core.Balance
	err := store.Session(ctx, s.db).View().Where("account = ? AND currency = ?", account, currency).First(&balance).Error
	if store.IsErrNotFound(err) {
		return &core.Balance{Account: account, Currency: currency, Amount: decimal.Zero}, nil
	}

	return &balance, err
}

func (s *balanceStore) save(ctx context.Context, balance *core.Balance) error {
	session := store.Session(ctx, s.db)
	if balance.Version == 0 {
		balance.Version = 1
		return session.Update().Create(balance).Error
	}

	version := balance.Version
	tx := session.Update().Model(core.Balance{}).
		Where("account = ? AND currency = ? AND version = ?", balance.Account, balance.Currency, version).
		Updates(map[string]interface{}{
			"amount":  balance.Amount,
			"version": version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	balance.Version = version + 1
	return nil
}

func (s *balanceStore) add(ctx context.Context, account, currency string, amount decimal.Decimal) error {
	balance, err := s.find(ctx, account, currency)
	if err != nil {
		return err
	}

	balance.Amount = balance.Amount.Add(amount)
	if balance.Amount.IsNegative() {
		return fmt.Errorf("%s %s: %w", account, currency, core.ErrInsufficientBalance)
	}

	return s.save(ctx, balance)
}

func (s *balanceStore) Mint(ctx context.Context, account, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}

	return s.add(ctx, account, currency, amount)
}

func (s *balanceStore) Burn(ctx context.Context, account, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}

	return s.add(ctx, account, currency, amount.Neg())
}

func (s *balanceStore) TotalSupply(ctx context.Context, currency string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := store.Session(ctx, s.db).View().Model(core.Balance{}).
		Select("SUM(amount)").
		Where("currency = ?", currency).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}

	if !total.Valid {
		return decimal.Zero, nil
	}

	return total.Decimal, nil
}

func (s *balanceStore) Transfer(ctx context.Context, from, to, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() || from == to {
		return nil
	}

	if err := s.add(ctx, from, currency, amount.Neg()); err != nil {
		return err
	}

	return s.add(ctx, to, currency, amount)
}

func (s *balanceStore) BalanceOf(ctx context.Context, account, currency string) (decimal.Decimal, error) {
	balance, err := s.find(ctx, account, currency)
	if err != nil {
		return decimal.Zero, err
	}

	return balance.Amount, nil
}

func (s *balanceStore) List(ctx context.Context, account string) ([]*core.Balance, error) {
	var balances []*core.Balance
	if err := store.Session(ctx, s.db).View().Where("account = ?", account).Order("currency").Find(&balances).Error; err != nil {
		return nil, err
	}

	return balances, nil
}
