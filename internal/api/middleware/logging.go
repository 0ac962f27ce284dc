package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/videocollect/internal/middleware"
)

// Logging creates request logging middleware for the API.
// Passing health checks are logged at debug level so probes stay quiet.
func Logging(logger *slog.Logger, healthRoute string) func(http.Handler) http.Handler {
	return middleware.Logging(logger, healthRoute)
}
