package rest

import (
	"context"
	"net/http"

	"multicollateral/core"
	"multicollateral/handler/param"
	"multicollateral/handler/render"
	"multicollateral/handler/views"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func poolView(ctx context.Context, svc core.PoolService, manager core.ManagerService, status core.StatusService) (*views.Pool, error) {
	pool, err := svc.Pool(ctx)
	if err != nil {
		return nil, err
	}

	view := views.Pool{Pool: *pool}
	if view.Active, err = manager.IsActive(ctx, pool.ID); err != nil {
		return nil, err
	}

	if view.Suspended, err = status.IsSuspended(ctx, core.PoolSection(pool.ID)); err != nil {
		return nil, err
	}

	if view.OpenLoans, err = svc.OpenLoans(ctx); err != nil {
		return nil, err
	}

	if view.TotalDebt, err = svc.TotalDebt(ctx); err != nil {
		return nil, err
	}

	return &view, nil
}

func poolsHandler(pools core.PoolDirectory, manager core.ManagerService, status core.StatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		services, err := pools.All(ctx)
		if err != nil {
			render.Error(w, err)
			return
		}

		items := make([]*views.Pool, 0, len(services))
		for _, svc := range services {
			view, err := poolView(ctx, svc, manager, status)
			if err != nil {
				render.Error(w, err)
				return
			}

			items = append(items, view)
		}

		render.JSON(w, items)
	}
}

func poolHandler(pools core.PoolDirectory, manager core.ManagerService, status core.StatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		svc, err := pools.Get(ctx, chi.URLParam(r, "pool"))
		if err != nil {
			render.Error(w, err)
			return
		}

		view, err := poolView(ctx, svc, manager, status)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, view)
	}
}

type poolBody struct {
	ID                 string              `json:"id" valid:"required"`
	Kind               core.CollateralKind `json:"kind"`
	CollateralCurrency string              `json:"collateral_currency" valid:"required"`
	TokenDecimals      int32               `json:"token_decimals"`
	Currencies         []string            `json:"currencies" valid:"required"`
	MinCollateralRatio decimal.Decimal     `json:"min_collateral_ratio"`
	MinLoanSize        decimal.Decimal     `json:"min_loan_size"`
	IssueFeeRate       decimal.Decimal     `json:"issue_fee_rate"`
	LiquidationPenalty decimal.Decimal     `json:"liquidation_penalty"`
	PenaltyFeeShare    decimal.Decimal     `json:"penalty_fee_share"`
	InterestRate       decimal.Decimal     `json:"interest_rate"`
	InteractionDelay   int64               `json:"interaction_delay"`
}

func (b *poolBody) pool() *core.Pool {
	return &core.Pool{
		ID:                 b.ID,
		Kind:               b.Kind,
		CollateralCurrency: b.CollateralCurrency,
		TokenDecimals:      b.TokenDecimals,
		Currencies:         b.Currencies,
		MinCollateralRatio: b.MinCollateralRatio,
		MinLoanSize:        b.MinLoanSize,
		IssueFeeRate:       b.IssueFeeRate,
		LiquidationPenalty: b.LiquidationPenalty,
		PenaltyFeeShare:    b.PenaltyFeeShare,
		InterestRate:       b.InterestRate,
		InteractionDelay:   b.InteractionDelay,
	}
}

func addPoolHandler(pools core.PoolDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body poolBody
		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		svc, err := pools.Add(r.Context(), body.pool())
		if err != nil {
			render.Error(w, err)
			return
		}

		pool, err := svc.Pool(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, pool)
	}
}

func updatePoolHandler(pools core.PoolDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body poolBody
		body.ID = chi.URLParam(r, "pool")
		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		pool := body.pool()
		pool.ID = chi.URLParam(r, "pool")
		if err := pools.Update(r.Context(), pool); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, pool)
	}
}

func removePoolHandler(manager core.ManagerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := manager.RemovePool(r.Context(), chi.URLParam(r, "pool")); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}

func suspendHandler(status core.StatusService, do serial, suspend bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Reason string `json:"reason"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		section := core.SectionGlobal
		if id := chi.URLParam(r, "pool"); id != "" {
			section = core.PoolSection(id)
		}

		err := do(r.Context(), func(ctx context.Context) error {
			if !suspend {
				return status.Resume(ctx, section)
			}

			reason := body.Reason
			if reason == "" {
				reason = "suspended by admin"
			}

			return status.Suspend(ctx, section, reason)
		})
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"section": section, "suspended": suspend})
	}
}
