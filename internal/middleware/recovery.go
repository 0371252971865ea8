package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/garoui/electricite-be/internal/http/respond"
)

// Recovery turns a handler panic into a 500 instead of a crashed process.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("request_id", RequestIDFromContext(r.Context())),
						slog.String("stack", string(debug.Stack())),
					)
					respond.Internal(w, r)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
