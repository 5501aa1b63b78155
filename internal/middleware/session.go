package middleware

import (
	"net/http"

	"oyna-console/internal/apiclient"
	"oyna-console/internal/logging"
	"oyna-console/internal/session"
	"oyna-console/internal/storage"
	"oyna-console/pkg/apierror"
)

// SessionConfig holds the dependencies of the session middleware.
type SessionConfig struct {
	API     *apiclient.Client
	Backend storage.Storage
	Logger  logging.Logger
}

// Session builds the request's session over the browser's scoped storage,
// initializes it and closes it when the request ends. Requests without a
// client id get a session over storage.Nop.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := storage.Scoped(cfg.Backend, GetClientID(r.Context()))
			sess := session.New(cfg.API, store, log)
			defer sess.Close()

			if err := sess.Initialize(r.Context()); err != nil {
				log.Error(r.Context(), "session initialize failed",
					"request_id", GetRequestID(r.Context()), "error", err)
				writeError(w, apierror.ServiceUnavailable(""))
				return
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
		})
	}
}
