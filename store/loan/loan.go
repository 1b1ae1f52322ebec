package loan

import (
	"context"

	"multicollateral/core"
	"multicollateral/store"

	"github.com/fox-one/pkg/store/db"
)

type loanStore struct {
	db *db.DB
}

// New new loan store
func New(db *db.DB) core.LoanStore {
	return &loanStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Loan{})
		if err := tx.AutoMigrate(core.Loan{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *loanStore) Create(ctx context.Context, loan *core.Loan) error {
	session := store.Session(ctx, s.db)

	var last struct {
		ID uint64
	}
	if err := session.Update().Model(core.Loan{}).
		Select("COALESCE(MAX(id), 0) AS id").
		Where("pool_id = ?", loan.PoolID).
		Scan(&last).Error; err != nil {
		return err
	}

	loan.ID = last.ID + 1
	loan.Version = 1
	return session.Update().Create(loan).Error
}

func (s *loanStore) Find(ctx context.Context, poolID string, id uint64) (*core.Loan, error) {
	var loan core.Loan
	err := store.Session(ctx, s.db).View().Where("pool_id = ? AND id = ?", poolID, id).First(&loan).Error
	if store.IsErrNotFound(err) {
		return &core.Loan{}, nil
	}

	return &loan, err
}

func (s *loanStore) FindByAccount(ctx context.Context, poolID, account string) ([]*core.Loan, error) {
	var loans []*core.Loan
	if err := store.Session(ctx, s.db).View().
		Where("pool_id = ? AND account = ?", poolID, account).
		Order("id").
		Find(&loans).Error; err != nil {
		return nil, err
	}

	return loans, nil
}

func (s *loanStore) ListOpen(ctx context.Context, poolID string, from uint64, limit int) ([]*core.Loan, error) {
	var loans []*core.Loan
	if err := store.Session(ctx, s.db).View().
		Where("pool_id = ? AND status = ? AND id > ?", poolID, core.LoanStatusOpen, from).
		Order("id").
		Limit(limit).
		Find(&loans).Error; err != nil {
		return nil, err
	}

	return loans, nil
}

func (s *loanStore) CountOpen(ctx context.Context, poolID string) (int64, error) {
	var count int64
	if err := store.Session(ctx, s.db).View().Model(core.Loan{}).
		Where("pool_id = ? AND status = ?", poolID, core.LoanStatusOpen).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func toUpdateParams(loan *core.Loan) map[string]interface{} {
	return map[string]interface{}{
		"collateral":          loan.Collateral,
		"principal":           loan.Principal,
		"accrued_interest":    loan.AccruedInterest,
		"interest_index":      loan.InterestIndex,
		"last_interaction_at": loan.LastInteractionAt,
		"status":              loan.Status,
	}
}

func (s *loanStore) Update(ctx context.Context, loan *core.Loan) error {
	version := loan.Version
	updates := toUpdateParams(loan)
	updates["version"] = version + 1

	tx := store.Session(ctx, s.db).Update().Model(core.Loan{}).
		Where("pool_id = ? AND id = ? AND version = ?", loan.PoolID, loan.ID, version).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	loan.Version = version + 1
	return nil
}
