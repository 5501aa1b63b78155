package middleware

import (
	"net/http"
	"time"

	"oyna-console/internal/gate"
	"oyna-console/internal/logging"
	"oyna-console/internal/session"
	"oyna-console/pkg/apierror"
)

// GrantConfig configures the access code guard of one section.
type GrantConfig struct {
	Section string
	// GatePath is where the code entry form of the section lives.
	GatePath string
	Logger   logging.Logger
	Now      func() time.Time
}

// RequireGrant lets a request through only while the browser holds a valid
// access grant for the section. Otherwise it answers 423 with the gate path.
func RequireGrant(cfg GrantConfig) func(http.Handler) http.Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromContext(r.Context())
			if !ok {
				writeError(w, apierror.Locked("").WithRedirect(cfg.GatePath))
				return
			}

			valid, err := gate.HasValidGrant(r.Context(), sess.Storage(), cfg.Section, cfg.Now())
			if err != nil {
				cfg.Logger.Warn(r.Context(), "grant check failed",
					"request_id", GetRequestID(r.Context()), "section", cfg.Section, "error", err)
			}
			if !valid {
				writeError(w, apierror.Locked("Bu bölüm için erişim kodu gerekli.").WithRedirect(cfg.GatePath))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
