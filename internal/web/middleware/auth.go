package middleware

import (
	"net/http"

	"github.com/mcoot/videocollect/internal/middleware"
)

// AuthRequiredMessage is shown when an anonymous visitor reaches a protected page
const AuthRequiredMessage = "You need to be logged in to access this page"

// Gate returns middleware that lets a request through only if the session
// is authenticated or the matched route's name is public. Everything else
// is answered by denied, and the route's handler never runs.
// Must be applied after Session.
func Gate(public map[string]bool, denied http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetSession(r.Context()).Authenticated() || public[middleware.RouteName(r)] {
				next.ServeHTTP(w, r)
				return
			}
			denied.ServeHTTP(w, r)
		})
	}
}
