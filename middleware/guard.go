package middleware

import (
	"context"
	"net/http"

	wsession "github.com/x-ordo/WPaymentManager-sub005"
	"github.com/x-ordo/WPaymentManager-sub005/token"
)

type sessionContextKey struct{}

// SessionFromContext returns the verified session payload injected by a guard.
func SessionFromContext(ctx context.Context) (token.Payload, bool) {
	payload, ok := ctx.Value(sessionContextKey{}).(token.Payload)
	return payload, ok
}

// Guard returns middleware that rejects requests without a valid session
// cookie with 401. Suitable for API routes consumed by XHR clients.
func Guard(engine *wsession.Engine) func(http.Handler) http.Handler {
	return guard(engine, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// RedirectGuard returns middleware that sends unauthenticated requests to
// loginPath with 303. Suitable for server-rendered browser routes.
func RedirectGuard(engine *wsession.Engine, loginPath string) func(http.Handler) http.Handler {
	return guard(engine, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
	})
}

func guard(engine *wsession.Engine, reject func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				reject(w, r)
				return
			}

			payload, err := engine.SessionFromRequest(r)
			if err != nil {
				reject(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
