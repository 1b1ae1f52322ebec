package index

import (
	"context"

	"multicollateral/core"
	"multicollateral/store"

	"github.com/fox-one/pkg/store/db"
)

type indexStore struct {
	db *db.DB
}

// New new interest index store
func New(db *db.DB) core.IndexStore {
	return &indexStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.InterestIndex{})
		if err := tx.AutoMigrate(core.InterestIndex{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *indexStore) Find(ctx context.Context, poolID, currency string) (*core.InterestIndex, error) {
	var index core.InterestIndex
	err := store.Session(ctx, s.db).View().Where("pool_id = ? AND currency = ?", poolID, currency).First(&index).Error
	if store.IsErrNotFound(err) {
		return &core.InterestIndex{PoolID: poolID, Currency: currency}, nil
	}

	return &index, err
}

// Save creates the index on version 0, otherwise updates it with an optimistic lock
func (s *indexStore) Save(ctx context.Context, index *core.InterestIndex) error {
	session := store.Session(ctx, s.db)
	if index.Version == 0 {
		index.Version = 1
		return session.Update().Create(index).Error
	}

	version := index.Version
	tx := session.Update().Model(core.InterestIndex{}).
		Where("pool_id = ? AND currency = ? AND version = ?", index.PoolID, index.Currency, version).
		Updates(map[string]interface{}{
			"value":      index.Value,
			"accrued_at": index.AccruedAt,
			"version":    version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	index.Version = version + 1
	return nil
}

func (s *indexStore) ListByPool(ctx context.Context, poolID string) ([]*core.InterestIndex, error) {
	var indexes []*core.InterestIndex
	if err := store.Session(ctx, s.db).View().Where("pool_id = ?", poolID).Order("currency").Find(&indexes).Error; err != nil {
		return nil, err
	}

	return indexes, nil
}
