package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/connerkup/ecometrics/internal/api/response"
)

// Recovery converts panics into 500 responses. Upload parsing handles
// attacker-controlled bytes, so a panic must never take the server down.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "An unexpected error occurred", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
