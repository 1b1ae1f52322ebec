package property

import (
	"context"

	"multicollateral/core"

	"github.com/fox-one/pkg/property"
	propertystore "github.com/fox-one/pkg/store/property"
	"github.com/fox-one/pkg/store/db"
)

type propertyStore struct {
	store property.Store
}

// New string settings over the fox-one property table
func New(db *db.DB) core.PropertyStore {
	return Wrap(propertystore.New(db))
}

// Wrap adapt any property.Store
func Wrap(store property.Store) core.PropertyStore {
	return &propertyStore{store: store}
}

func (s *propertyStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.store.Get(ctx, key)
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

func (s *propertyStore) Save(ctx context.Context, key, value string) error {
	return s.store.Save(ctx, key, value)
}
