package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/videocollect/internal/api/apierr"
	"github.com/mcoot/videocollect/internal/middleware"
	"github.com/mcoot/videocollect/internal/session"
)

// Auth creates authentication middleware. It loads the session from the
// shared cookie and rejects unauthenticated requests with 401 unless the
// matched route's name is public.
func Auth(manager *session.Manager, public map[string]bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := manager.Load(r)
			if err != nil {
				logger.Error("failed to load session", "error", err)
				apierr.WriteError(w, apierr.NewInternalError())
				return
			}

			if !s.Authenticated() && !public[middleware.RouteName(r)] {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))
		})
	}
}
