package rest

import (
	"net/http"

	"multicollateral/core"
	"multicollateral/handler/param"
	"multicollateral/handler/render"
	"multicollateral/handler/request"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/twitchtv/twirp"
)

func loanID(r *http.Request) (uint64, error) {
	id, err := cast.ToUint64E(chi.URLParam(r, "loan"))
	if err != nil || id == 0 {
		return 0, twirp.InvalidArgumentError("loan", "must be a positive integer")
	}

	return id, nil
}

func loansHandler(pools core.PoolDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Account string `json:"account"`
			From    uint64 `json:"from"`
			Limit   int    `json:"limit" valid:"range(0|500)"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		ctx := r.Context()
		svc, err := pools.Get(ctx, chi.URLParam(r, "pool"))
		if err != nil {
			render.Error(w, err)
			return
		}

		if params.Account == "" {
			params.Account, _ = request.NewContext(ctx).GetAccount()
		}

		var loans []*core.Loan
		if params.Account != "" {
			loans, err = svc.Loans(ctx, params.Account)
		} else {
			if params.Limit == 0 {
				params.Limit = 100
			}

			loans, err = svc.ListOpen(ctx, params.From, params.Limit)
		}

		if err != nil {
			render.Error(w, err)
			return
		}

		if loans == nil {
			loans = []*core.Loan{}
		}

		render.JSON(w, loans)
	}
}

func positionHandler(pools core.PoolDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := loanID(r)
		if err != nil {
			render.Error(w, err)
			return
		}

		svc, err := pools.Get(ctx, chi.URLParam(r, "pool"))
		if err != nil {
			render.Error(w, err)
			return
		}

		pos, err := svc.Position(ctx, id)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, pos)
	}
}

func openHandler(pools core.PoolDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Collateral decimal.Decimal `json:"collateral"`
			Amount     decimal.Decimal `json:"amount"`
			Currency   string          `json:"currency" valid:"required"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		ctx := r.Context()
		account, _ := request.NewContext(ctx).GetAccount()

		svc, err := pools.Get(ctx, chi.URLParam(r, "pool"))
		if err != nil {
			render.Error(w, err)
			return
		}

		loan, err := svc.Open(ctx, account, body.Collateral, body.Amount, body.Currency)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, loan)
	}
}

func loanActionHandler(pools core.PoolDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount decimal.Decimal `json:"amount"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		id, err := loanID(r)
		if err != nil {
			render.Error(w, err)
			return
		}

		ctx := r.Context()
		account, _ := request.NewContext(ctx).GetAccount()

		svc, err := pools.Get(ctx, chi.URLParam(r, "pool"))
		if err != nil {
			render.Error(w, err)
			return
		}

		var result interface{}
		switch action := chi.URLParam(r, "action"); action {
		case "deposit":
			result, err = svc.Deposit(ctx, account, id, body.Amount)
		case "withdraw":
			result, err = svc.Withdraw(ctx, account, id, body.Amount)
		case "repay":
			result, err = svc.Repay(ctx, account, id, body.Amount)
		case "draw":
			result, err = svc.Draw(ctx, account, id, body.Amount)
		case "liquidate":
			result, err = svc.Liquidate(ctx, account, id, body.Amount)
		case "close":
			result, err = svc.Close(ctx, account, id)
		default:
			render.NotFoundRequest(w, twirp.NotFoundError(action))
			return
		}

		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, result)
	}
}
