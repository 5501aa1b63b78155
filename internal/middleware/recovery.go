package middleware

import (
	"net/http"
	"runtime/debug"

	"oyna-console/internal/logging"
	"oyna-console/pkg/apierror"
)

// Recovery turns a panic into a 500 response and logs the stack.
func Recovery(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error(r.Context(), "panic recovered",
						"request_id", GetRequestID(r.Context()),
						"panic", err,
						"stack", string(debug.Stack()),
					)
					writeError(w, apierror.InternalError("internal server error"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
