package memory

import (
	"context"

	"multicollateral/core"
)

// Properties property store
func (db *DB) Properties() core.PropertyStore {
	return &propertyStore{db: db}
}

type propertyStore struct {
	db *DB
}

func (s *propertyStore) Get(_ context.Context, key string) (string, error) {
	var v string
	s.db.read(func(st *state) {
		v = st.properties[key]
	})

	return v, nil
}

func (s *propertyStore) Save(_ context.Context, key, value string) error {
	return s.db.write(func(st *state) error {
		st.properties[key] = value
		return nil
	})
}
