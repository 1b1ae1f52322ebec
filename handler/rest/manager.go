package rest

import (
	"net/http"

	"multicollateral/core"
	"multicollateral/handler/param"
	"multicollateral/handler/render"
	"multicollateral/handler/views"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func managerHandler(manager core.ManagerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var (
			view views.Manager
			err  error
		)

		if view.Settings, err = manager.Settings(ctx); err != nil {
			render.Error(w, err)
			return
		}

		if view.TotalDebt, err = manager.TotalDebt(ctx); err != nil {
			render.Error(w, err)
			return
		}

		if view.Debts, err = manager.Debts(ctx); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, view)
	}
}

func rateHandler(manager core.ManagerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		view := views.Rate{Currency: chi.URLParam(r, "currency")}

		var err error
		if view.Utilization, err = manager.Utilization(ctx, view.Currency); err != nil {
			render.Error(w, err)
			return
		}

		if view.ShortRate, err = manager.ShortRate(ctx, view.Currency); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, view)
	}
}

func settingHandler(manager core.ManagerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name  string          `json:"name" valid:"required"`
			Value decimal.Decimal `json:"value"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		if err := manager.SetSetting(r.Context(), body.Name, body.Value); err != nil {
			render.Error(w, err)
			return
		}

		settings, err := manager.Settings(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, settings)
	}
}

func feesHandler(fees core.FeeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := fees.Totals(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, totals)
	}
}
