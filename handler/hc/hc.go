package hc

import (
	"net/http"
	"time"

	"multicollateral/core"
	"multicollateral/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Handle handle hc request
func Handle(ver string, status core.SystemStatus) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(ver, status))
	return r
}

func handle(version string, status core.SystemStatus) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		suspended, err := status.IsSuspended(r.Context(), core.SectionGlobal)
		if err != nil {
			render.Error(w, err)
			return
		}

		uptime := time.Since(b).Truncate(time.Millisecond)
		render.JSON(w, render.H{
			"uptime":    uptime.String(),
			"version":   version,
			"suspended": suspended,
		})
	}
}
