package middleware

import (
	"net/http"

	"github.com/boardlink-dev/boardlink/internal/logger"
	"github.com/boardlink-dev/boardlink/internal/utils"
)

// Recover converts panics in downstream handlers into 500 JSON responses
// so the error contract stays uniform even on unhandled failures.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log.Error("panic recovered", "method", r.Method, "path", r.URL.Path, "panic", rec)
				utils.WriteErrorMessage(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
