package pool

import (
	"context"

	"multicollateral/core"
	"multicollateral/store"

	"github.com/fox-one/pkg/store/db"
)

type poolStore struct {
	db *db.DB
}

// New new pool store
func New(db *db.DB) core.PoolStore {
	return &poolStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Pool{})
		if err := tx.AutoMigrate(core.Pool{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *poolStore) Save(ctx context.Context, pool *core.Pool) error {
	return store.Session(ctx, s.db).Update().Where("id = ?", pool.ID).FirstOrCreate(pool).Error
}

func (s *poolStore) Find(ctx context.Context, id string) (*core.Pool, error) {
	var pool core.Pool
	err := store.Session(ctx, s.db).View().Where("id = ?", id).First(&pool).Error
	if store.IsErrNotFound(err) {
		return &core.Pool{}, nil
	}

	return &pool, err
}

func (s *poolStore) All(ctx context.Context) ([]*core.Pool, error) {
	var pools []*core.Pool
	if err := store.Session(ctx, s.db).View().Order("id").Find(&pools).Error; err != nil {
		return nil, err
	}

	return pools, nil
}

func toUpdateParams(pool *core.Pool) map[string]interface{} {
	return map[string]interface{}{
		"currencies":           pool.Currencies,
		"min_collateral_ratio": pool.MinCollateralRatio,
		"min_loan_size":        pool.MinLoanSize,
		"issue_fee_rate":       pool.IssueFeeRate,
		"liquidation_penalty":  pool.LiquidationPenalty,
		"penalty_fee_share":    pool.PenaltyFeeShare,
		"interest_rate":        pool.InterestRate,
		"interaction_delay":    pool.InteractionDelay,
	}
}

func (s *poolStore) Update(ctx context.Context, pool *core.Pool) error {
	version := pool.Version
	updates := toUpdateParams(pool)
	updates["version"] = version + 1

	tx := store.Session(ctx, s.db).Update().Model(core.Pool{}).
		Where("id = ? AND version = ?", pool.ID, version).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	pool.Version = version + 1
	return nil
}
