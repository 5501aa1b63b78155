package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oyna-console/internal/apiclient"
	"oyna-console/internal/config"
	"oyna-console/internal/gate"
	"oyna-console/internal/handler"
	"oyna-console/internal/logging"
	"oyna-console/internal/middleware"
	"oyna-console/internal/router"
	"oyna-console/internal/service"
	"oyna-console/internal/session"
	"oyna-console/internal/validation"
)

func main() {
	cfg := config.MustLoad()

	log := logging.New(os.Stdout, cfg.Log.Format, cfg.Log.Level).
		With("service", cfg.App.Name, "env", cfg.App.Environment)
	ctx := context.Background()

	log.Info(ctx, "starting console", "version", cfg.App.Version)

	if !gate.Configured(cfg.Gate.Code) {
		log.Warn(ctx, "GATE_CODE is not a 4 digit code; protected sections stay locked")
	}

	api, err := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout,
		apiclient.WithUserAgent(cfg.App.Name+"/"+cfg.App.Version))
	if err != nil {
		log.Error(ctx, "invalid API configuration", "error", err)
		os.Exit(1)
	}
	log.Info(ctx, "remote API configured", "base_url", api.BaseURL(), "timeout", cfg.API.Timeout)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	be, err := openBackend(initCtx, cfg, log)
	cancel()
	if err != nil {
		log.Error(ctx, "failed to open storage", "type", cfg.Storage.Type, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := be.close(); err != nil {
			log.Warn(ctx, "storage close failed", "error", err)
		}
	}()
	log.Info(ctx, "storage initialized", "type", cfg.Storage.Type)

	var sweeper *service.CleanupScheduler
	if be.expirer != nil {
		sweeper = service.NewCleanupScheduler(be.expirer, service.CleanupConfig{Interval: cfg.Storage.SweepEvery}, log)
		sweeper.Start()
	}

	// Services
	validate := validation.New()
	registry := service.DefaultRegistry()
	codec := session.NewDescriptorCodec(cfg.Session.Secret, cfg.Session.TTL)
	authService := service.NewAuthService(codec, cfg.Session.AdminRoles, log)
	dashboard := service.NewDashboardService(registry, log)

	gateCfg := gate.Config{
		Code:        cfg.Gate.Code,
		TTL:         cfg.Gate.TTL,
		MaxAttempts: cfg.Gate.MaxAttempts,
		Redirect:    cfg.Gate.Redirect,
	}

	// Handlers
	healthHandler := handler.New(cfg.App.Name, cfg.App.Version, be.check)
	authHandler := handler.NewAuthHandler(authService, validate, handler.CookieConfig{
		Name:   cfg.Session.DescriptorCookie,
		Secure: cfg.Session.Secure,
	}, log)
	adminHandler := handler.NewAdminHandler(dashboard, cfg.Storage.Type)
	resourceHandler := handler.NewResourceHandler(registry, validate, log)
	gateHandler := handler.NewGateHandler(gateCfg, service.DefaultSections, validate, log)
	sectionHandler := handler.NewSectionHandler(validate, log)

	r := router.New(router.Config{
		Logger:         log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,

		Handler:         healthHandler,
		AuthHandler:     authHandler,
		AdminHandler:    adminHandler,
		ResourceHandler: resourceHandler,
		GateHandler:     gateHandler,
		SectionHandler:  sectionHandler,
		Sections:        service.DefaultSections,

		ClientID: middleware.ClientID(middleware.ClientIDConfig{
			CookieName: cfg.Session.ClientCookie,
			Secure:     cfg.Session.Secure,
		}),
		Session: middleware.Session(middleware.SessionConfig{
			API:     api,
			Backend: be.store,
			Logger:  log,
		}),
		RequireAdmin: middleware.RequireAdmin(middleware.AdminConfig{
			Auth:       authService,
			CookieName: cfg.Session.DescriptorCookie,
		}),
		RequireGrant: func(section string) func(http.Handler) http.Handler {
			return middleware.RequireGrant(middleware.GrantConfig{
				Section:  section,
				GatePath: "/console/gate/" + section,
				Logger:   log,
			})
		},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", "addr", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info(ctx, "shutting down server", "signal", sig.String())
	case err := <-serveErr:
		log.Error(ctx, "server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown error", "error", err)
	}
	if sweeper != nil {
		sweeper.Stop()
	}

	log.Info(ctx, "server stopped")
}
