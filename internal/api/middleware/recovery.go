package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/videocollect/internal/api/apierr"
	"github.com/mcoot/videocollect/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic, quoting the request id when set
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalErrorRef(w.Header().Get(middleware.RequestIDHeader)))
}
