package rest

import (
	"context"
	"errors"
	"net/http"

	"multicollateral/core"
	"multicollateral/handler/auth"
	"multicollateral/handler/render"
	"multicollateral/pkg/concurrency"
	"multicollateral/store/balance"

	"github.com/go-chi/chi"
)

// serial runs fn in the shared lane as one unit of work
type serial func(ctx context.Context, fn func(ctx context.Context) error) error

// Handle handle rest api request
func Handle(
	cfg *core.Config,
	pools core.PoolDirectory,
	manager core.ManagerService,
	balances balance.Store,
	fees core.FeeStore,
	status core.StatusService,
	tx core.Transactor,
	lane *concurrency.Lane,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	do := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return lane.Do(ctx, func() error {
			return tx.Tx(ctx, fn)
		})
	}

	router.Get("/pools", poolsHandler(pools, manager, status))
	router.Get("/pools/{pool}", poolHandler(pools, manager, status))
	router.Get("/pools/{pool}/loans", loansHandler(pools))
	router.Get("/pools/{pool}/loans/{loan}", positionHandler(pools))
	router.Get("/manager", managerHandler(manager))
	router.Get("/manager/rates/{currency}", rateHandler(manager))
	router.Get("/fees", feesHandler(fees))

	router.Group(func(r chi.Router) {
		r.Use(auth.LoginRequired)
		r.Get("/balances", balancesHandler(balances))
		r.Post("/pools/{pool}/loans", openHandler(pools))
		r.Post("/pools/{pool}/loans/{loan}/{action}", loanActionHandler(pools))
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.AdminRequired(cfg))
		r.Post("/pools", addPoolHandler(pools))
		r.Put("/pools/{pool}", updatePoolHandler(pools))
		r.Delete("/pools/{pool}", removePoolHandler(manager))
		r.Post("/pools/{pool}/suspend", suspendHandler(status, do, true))
		r.Post("/pools/{pool}/resume", suspendHandler(status, do, false))
		r.Post("/suspend", suspendHandler(status, do, true))
		r.Post("/resume", suspendHandler(status, do, false))
		r.Post("/manager/settings", settingHandler(manager))
		r.Post("/balances/mint", mintHandler(balances, do))
	})

	return router
}
