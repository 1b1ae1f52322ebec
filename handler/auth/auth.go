package auth

import (
	"net/http"
	"strings"

	"multicollateral/core"
	"multicollateral/handler/render"
	"multicollateral/handler/request"

	"github.com/fox-one/pkg/logger"
	"github.com/twitchtv/twirp"
)

// HandleAuthentication resolves the bearer api key into an account
func HandleAuthentication(accounts map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.FromContext(ctx)

			accessToken := getBearerToken(r)
			if accessToken == "" {
				next.ServeHTTP(w, r)
				return
			}

			account, ok := accounts[accessToken]
			if !ok {
				log.Debugln("unknown api key")
				next.ServeHTTP(w, r)
				return
			}

			ctx = logger.WithContext(ctx, log.WithField("account", account))
			next.ServeHTTP(w, r.WithContext(request.NewContext(ctx).WithAccount(account)))
		}

		return http.HandlerFunc(fn)
	}
}

// LoginRequired rejects anonymous requests
func LoginRequired(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if _, ok := request.NewContext(r.Context()).GetAccount(); !ok {
			render.Error(w, twirp.NewError(twirp.Unauthenticated, "authentication required"))
			return
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

// AdminRequired only admins configured in cfg pass
func AdminRequired(cfg *core.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			account, ok := request.NewContext(r.Context()).GetAccount()
			if !ok || !cfg.IsAdmin(account) {
				render.Error(w, twirp.NewError(twirp.PermissionDenied, "admin only"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func getBearerToken(r *http.Request) string {
	s := r.Header.Get("Authorization")
	return strings.TrimPrefix(s, "Bearer ")
}
