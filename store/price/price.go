package price

import (
	"context"
	"time"

	"multicollateral/core"
	"multicollateral/store"

	"github.com/fox-one/pkg/store/db"
)

type priceStore struct {
	db *db.DB
}

// New new price store
func New(db *db.DB) core.IPriceStore {
	return &priceStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Price{})

		if err := tx.AutoMigrate(core.Price{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *priceStore) Create(ctx context.Context, price *core.Price) error {
	return store.Session(ctx, s.db).Update().Create(price).Error
}

func (s *priceStore) Latest(ctx context.Context, currency string) (*core.Price, error) {
	var price core.Price
	err := store.Session(ctx, s.db).View().Where("currency = ?", currency).Order("created_at DESC, id DESC").First(&price).Error
	if store.IsErrNotFound(err) {
		return &core.Price{}, nil
	}

	return &price, err
}

func (s *priceStore) DeleteBefore(ctx context.Context, t time.Time) error {
	return s.db.Update().Where("created_at < ?", t).Delete(core.Price{}).Error
}
