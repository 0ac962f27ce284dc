package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/videocollect/internal/middleware"
)

// Logging creates logging middleware for the web interface.
// Asset routes are only logged at debug level.
func Logging(logger *slog.Logger, assetRoutes ...string) func(http.Handler) http.Handler {
	return middleware.Logging(logger, assetRoutes...)
}
