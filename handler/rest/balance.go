package rest

import (
	"context"
	"net/http"

	"multicollateral/core"
	"multicollateral/handler/param"
	"multicollateral/handler/render"
	"multicollateral/handler/request"
	"multicollateral/store/balance"

	"github.com/shopspring/decimal"
)

func balancesHandler(balances balance.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		account, _ := request.NewContext(ctx).GetAccount()

		items, err := balances.List(ctx, account)
		if err != nil {
			render.Error(w, err)
			return
		}

		if items == nil {
			items = []*core.Balance{}
		}

		render.JSON(w, items)
	}
}

// mintHandler credits an account, the stand-in for deposits arriving from
// outside the engine
func mintHandler(balances balance.Store, do serial) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Account  string          `json:"account" valid:"required"`
			Currency string          `json:"currency" valid:"required"`
			Amount   decimal.Decimal `json:"amount"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		if !body.Amount.IsPositive() {
			render.Error(w, core.ErrInputInvalid)
			return
		}

		err := do(r.Context(), func(ctx context.Context) error {
			return balances.Mint(ctx, body.Account, body.Currency, body.Amount)
		})
		if err != nil {
			render.Error(w, err)
			return
		}

		amount, err := balances.BalanceOf(r.Context(), body.Account, body.Currency)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, core.Balance{
			Account:  body.Account,
			Currency: body.Currency,
			Amount:   amount,
		})
	}
}
