package handler

import (
	"net/http"

	"multicollateral/core"
	"multicollateral/handler/auth"
	"multicollateral/handler/render"
	"multicollateral/handler/rest"
	"multicollateral/pkg/concurrency"
	"multicollateral/store/balance"

	"github.com/go-chi/chi"
)

// Server server
type Server struct {
	cfg      *core.Config
	pools    core.PoolDirectory
	manager  core.ManagerService
	balances balance.Store
	fees     core.FeeStore
	status   core.StatusService
	tx       core.Transactor
	lane     *concurrency.Lane
}

// New new server function
func New(
	cfg *core.Config,
	pools core.PoolDirectory,
	manager core.ManagerService,
	balances balance.Store,
	fees core.FeeStore,
	status core.StatusService,
	tx core.Transactor,
	lane *concurrency.Lane,
) Server {
	return Server{
		cfg:      cfg,
		pools:    pools,
		manager:  manager,
		balances: balances,
		fees:     fees,
		status:   status,
		tx:       tx,
		lane:     lane,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(render.WrapResponse(true))
	r.Use(auth.HandleAuthentication(s.cfg.Accounts))
	r.Mount("/", rest.Handle(s.cfg, s.pools, s.manager, s.balances, s.fees, s.status, s.tx, s.lane))
	return r
}
