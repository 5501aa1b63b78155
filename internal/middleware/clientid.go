package middleware

import (
	"context"
	"net/http"
	"time"

	"oyna-console/pkg/uid"
)

// ClientIDKey is the context key for the browser's client id.
const ClientIDKey contextKey = "client_id"

// ClientIDConfig configures the client id cookie.
type ClientIDConfig struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// ClientID identifies the browser by a long-lived random cookie. Its value
// namespaces the browser's persisted state.
func ClientID(cfg ClientIDConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "oyna_cid"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 365 * 24 * time.Hour
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				id, _ = uid.Normalize(c.Value)
			}
			if id == "" {
				id = uid.New()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ClientIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientID retrieves the client id from context.
func GetClientID(ctx context.Context) string {
	if id, ok := ctx.Value(ClientIDKey).(string); ok {
		return id
	}
	return ""
}
