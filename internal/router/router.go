package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"oyna-console/internal/handler"
	"oyna-console/internal/logging"
	"oyna-console/internal/middleware"
	"oyna-console/internal/service"
)

// Config holds the configuration for creating a router.
type Config struct {
	Logger         logging.Logger
	AllowedOrigins []string
	StaticDir      string

	Handler         *handler.Handler
	AuthHandler     *handler.AuthHandler
	AdminHandler    *handler.AdminHandler
	ResourceHandler *handler.ResourceHandler
	GateHandler     *handler.GateHandler
	SectionHandler  *handler.SectionHandler
	Sections        []service.Section

	ClientID     func(http.Handler) http.Handler
	Session      func(http.Handler) http.Handler
	RequireAdmin func(http.Handler) http.Handler
	// RequireGrant builds the access code guard of one section.
	RequireGrant func(section string) func(http.Handler) http.Handler
}

func passthrough(next http.Handler) http.Handler { return next }

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	for _, mw := range []*func(http.Handler) http.Handler{&cfg.ClientID, &cfg.Session, &cfg.RequireAdmin} {
		if *mw == nil {
			*mw = passthrough
		}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		})
	}
	if cfg.AuthHandler != nil {
		r.Get("/unauthorized", cfg.AuthHandler.Unauthorized)
	}

	if cfg.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.StaticDir))
		r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	r.Route("/console", func(r chi.Router) {
		r.Use(cfg.ClientID)
		r.Use(cfg.Session)

		if cfg.AuthHandler != nil {
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/logout", cfg.AuthHandler.Logout)
		}

		// ADMIN routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireAdmin)

			if cfg.AuthHandler != nil {
				r.Get("/auth/me", cfg.AuthHandler.Me)
			}
			if cfg.AdminHandler != nil {
				r.Get("/dashboard", cfg.AdminHandler.GetDashboard)
			}

			if cfg.GateHandler != nil {
				r.Route("/gate/{section}", func(r chi.Router) {
					r.Get("/", cfg.GateHandler.State)
					r.Delete("/", cfg.GateHandler.Lock)
					r.Post("/digits", cfg.GateHandler.Digit)
					r.Post("/backspace", cfg.GateHandler.Backspace)
					r.Post("/focus", cfg.GateHandler.Focus)
					r.Post("/verify", cfg.GateHandler.Verify)
				})
			}

			if cfg.SectionHandler != nil {
				for _, sec := range cfg.Sections {
					guard := passthrough
					if cfg.RequireGrant != nil {
						guard = cfg.RequireGrant(sec.Name)
					}
					r.With(guard).Get("/sections/"+sec.Name, cfg.SectionHandler.Get(sec))
					r.With(guard).Put("/sections/"+sec.Name, cfg.SectionHandler.Put(sec))
				}
			}

			if cfg.ResourceHandler != nil {
				r.Get("/resources", cfg.ResourceHandler.Index)
				r.Route("/{resource}", func(r chi.Router) {
					r.Get("/", cfg.ResourceHandler.List)
					r.Post("/", cfg.ResourceHandler.Create)
					r.Put("/{id}", cfg.ResourceHandler.Update)
					r.Delete("/{id}", cfg.ResourceHandler.Delete)
					r.Post("/{id}/{action}", cfg.ResourceHandler.Action)
				})
			}
		})
	})

	return r
}
