package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/videocollect/internal/session"
)

// GetSession retrieves the request's session from the context.
// Returns nil if the session middleware was not applied.
func GetSession(ctx context.Context) *session.Session {
	return session.FromContext(ctx)
}

// Session returns middleware that loads the session named by the cookie.
// Anonymous visitors get a fresh session that is only persisted if a
// handler saves it.
func Session(manager *session.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := manager.Load(r)
			if err != nil {
				logger.Error("failed to load session", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))
		})
	}
}
