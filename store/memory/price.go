package memory

import (
	"context"
	"time"

	"multicollateral/core"
)

// Prices price store
func (db *DB) Prices() core.IPriceStore {
	return &priceStore{db: db}
}

type priceStore struct {
	db *DB
}

func (s *priceStore) Create(_ context.Context, price *core.Price) error {
	return s.db.write(func(st *state) error {
		st.seq++
		price.ID = st.seq
		if price.CreatedAt.IsZero() {
			price.CreatedAt = time.Now()
		}

		st.prices = append(st.prices, *price)
		return nil
	})
}

func (s *priceStore) Latest(_ context.Context, currency string) (*core.Price, error) {
	price := &core.Price{}
	s.db.read(func(st *state) {
		for _, p := range st.prices {
			if p.Currency != currency {
				continue
			}

			if price.ID == 0 || !p.CreatedAt.Before(price.CreatedAt) {
				v := p
				price = &v
			}
		}
	})

	return price, nil
}

func (s *priceStore) DeleteBefore(_ context.Context, t time.Time) error {
	return s.db.write(func(st *state) error {
		kept := st.prices[:0:0]
		for _, p := range st.prices {
			if !p.CreatedAt.Before(t) {
				kept = append(kept, p)
			}
		}

		st.prices = kept
		return nil
	})
}
