package manager

import (
	"context"

	"multicollateral/core"
	"multicollateral/store"

	"github.com/fox-one/pkg/store/db"
)

type managerStore struct {
	db *db.DB
}

// New new manager store
func New(db *db.DB) core.ManagerStore {
	return &managerStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.PoolEntry{})
		if err := tx.AutoMigrate(core.PoolEntry{}).Error; err != nil {
			return err
		}

		tx = db.Update().Model(core.PoolDebt{})
		if err := tx.AutoMigrate(core.PoolDebt{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *managerStore) SavePool(ctx context.Context, entry *core.PoolEntry) error {
	return store.Session(ctx, s.db).Update().Where("pool_id = ?", entry.PoolID).FirstOrCreate(entry).Error
}

func (s *managerStore) FindPool(ctx context.Context, poolID string) (*core.PoolEntry, error) {
	var entry core.PoolEntry
	err := store.Session(ctx, s.db).View().Where("pool_id = ?", poolID).First(&entry).Error
	if store.IsErrNotFound(err) {
		return &core.PoolEntry{}, nil
	}

	return &entry, err
}

func (s *managerStore) ListPools(ctx context.Context) ([]*core.PoolEntry, error) {
	var entries []*core.PoolEntry
	if err := store.Session(ctx, s.db).View().Order("pool_id").Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *managerStore) DeletePool(ctx context.Context, poolID string) error {
	return store.Session(ctx, s.db).Update().Where("pool_id = ?", poolID).Delete(core.PoolEntry{}).Error
}

func (s *managerStore) FindDebt(ctx context.Context, poolID, currency string) (*core.PoolDebt, error) {
	var debt core.PoolDebt
	err := store.Session(ctx, s.db).View().Where("pool_id = ? AND currency = ?", poolID, currency).First(&debt).Error
	if store.IsErrNotFound(err) {
		return &core.PoolDebt{PoolID: poolID, Currency: currency}, nil
	}

	return &debt, err
}

// SaveDebt creates the row on version 0, otherwise updates it with an optimistic lock
func (s *managerStore) SaveDebt(ctx context.Context, debt *core.PoolDebt) error {
	session := store.Session(ctx, s.db)
	if debt.Version == 0 {
		debt.Version = 1
		return session.Update().Create(debt).Error
	}

	version := debt.Version
	tx := session.Update().Model(core.PoolDebt{}).
		Where("pool_id = ? AND currency = ? AND version = ?", debt.PoolID, debt.Currency, version).
		Updates(map[string]interface{}{
			"amount":  debt.Amount,
			"short":   debt.Short,
			"version": version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	debt.Version = version + 1
	return nil
}

func (s *managerStore) ListDebts(ctx context.Context) ([]*core.PoolDebt, error) {
	var debts []*core.PoolDebt
	if err := store.Session(ctx, s.db).View().Order("pool_id, currency").Find(&debts).Error; err != nil {
		return nil, err
	}

	return debts, nil
}

func (s *managerStore) DeleteDebts(ctx context.Context, poolID string) error {
	return store.Session(ctx, s.db).Update().Where("pool_id = ?", poolID).Delete(core.PoolDebt{}).Error
}
