package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"oyna-console/internal/service"
	"oyna-console/internal/session"
	"oyna-console/pkg/apierror"
)

// DescriptorKey is the context key for the signed-in admin's descriptor.
const DescriptorKey contextKey = "descriptor"

// AdminConfig holds configuration for the admin route guard.
type AdminConfig struct {
	Auth       *service.AuthService
	CookieName string
	// UnauthorizedPath is where HTML requests are redirected.
	UnauthorizedPath string
}

// RequireAdmin lets a request through only when the descriptor cookie is
// valid and names an elevated role. JSON clients get 401 or 403; browsers
// navigating to a page are redirected to UnauthorizedPath.
func RequireAdmin(cfg AdminConfig) func(http.Handler) http.Handler {
	if cfg.UnauthorizedPath == "" {
		cfg.UnauthorizedPath = "/unauthorized"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw string
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				raw = c.Value
			}

			d, err := cfg.Auth.Authorize(raw)
			if err != nil {
				if WantsHTML(r) {
					http.Redirect(w, r, cfg.UnauthorizedPath, http.StatusFound)
					return
				}
				var apiErr *apierror.Error
				if !errors.As(err, &apiErr) {
					apiErr = apierror.Unauthorized("")
				}
				writeError(w, apiErr)
				return
			}

			ctx := context.WithValue(r.Context(), DescriptorKey, d)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetDescriptor retrieves the admin descriptor from context.
func GetDescriptor(ctx context.Context) (session.Descriptor, bool) {
	d, ok := ctx.Value(DescriptorKey).(session.Descriptor)
	return d, ok
}

// WantsHTML reports whether r is a browser page navigation rather than an
// API call.
func WantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return r.Method == http.MethodGet &&
		strings.Contains(accept, "text/html") &&
		!strings.Contains(accept, "application/json")
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_, _ = w.Write(err.ToJSON())
}
