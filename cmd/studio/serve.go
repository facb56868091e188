// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/studio-go/internal/admin"
	"github.com/olegiv/studio-go/internal/config"
	"github.com/olegiv/studio-go/internal/geoip"
	"github.com/olegiv/studio-go/internal/handler"
	"github.com/olegiv/studio-go/internal/imaging"
	"github.com/olegiv/studio-go/internal/logging"
	"github.com/olegiv/studio-go/internal/metrics"
	"github.com/olegiv/studio-go/internal/middleware"
	"github.com/olegiv/studio-go/internal/render"
	"github.com/olegiv/studio-go/internal/service"
	"github.com/olegiv/studio-go/internal/session"
	"github.com/olegiv/studio-go/internal/store"
	"github.com/olegiv/studio-go/web"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 30 * time.Second
	staticMaxAge    = "public, max-age=604800"
)

// app holds what every command needs: configuration, the logging
// pipeline and an open, migrated database.
type app struct {
	cfg      *config.Config
	pipeline *logging.Pipeline
	logger   *slog.Logger
	db       *sql.DB
	queries  *store.Queries
}

// bootstrap loads configuration, installs the logging pipeline and opens
// the database. console receives records for console-enabled profiles.
func bootstrap(console io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	settings, err := logging.SettingsFor(cfg.Env).WithOverrides(cfg.LogDir, cfg.LogLevel, cfg.LogConsole)
	if err != nil {
		return nil, fmt.Errorf("logging settings: %w", err)
	}
	pipeline := logging.New(settings, console)
	pipeline.InstallDefault()
	logger := pipeline.Logger()

	driver := cfg.DatabaseDriver()
	db, err := store.Open(driver, cfg.DatabaseDSN())
	if err != nil {
		_ = pipeline.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := store.MigrateDriver(db, driver); err != nil {
		_ = db.Close()
		_ = pipeline.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	pipeline.Named("database").Info("database ready", "driver", driver)

	return &app{
		cfg:      cfg,
		pipeline: pipeline,
		logger:   logger,
		db:       db,
		queries:  store.NewForDriver(db, driver),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("error closing database connection", "error", err)
	}
	_ = a.pipeline.Close()
}

func runServe(args []string, _ io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := bootstrap(os.Stdout)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, logger := a.cfg, a.logger

	if err := a.pipeline.StartRetention(); err != nil {
		logger.Warn("log retention not scheduled", "error", err)
	}

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn("geoip disabled", "error", err, "path", cfg.GeoIPDBPath)
	}
	defer func() { _ = geo.Close() }()

	sessionManager := session.New(a.db, session.Options{
		Driver:   cfg.DatabaseDriver(),
		Lifetime: cfg.AdminSessionLifetime,
		Secure:   cfg.IsProduction(),
	})

	renderer, err := render.New(render.Config{
		TemplatesFS:    web.TemplateFiles(),
		SessionManager: sessionManager,
		SiteName:       cfg.SiteName,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	if err := os.MkdirAll(cfg.UploadsPath(), 0o755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}
	uploader := imaging.NewUploader(cfg.UploadsPath(), logger)

	m := metrics.New()
	registry := admin.NewRegistry(admin.Config{
		Queries:  a.queries,
		Sessions: sessionManager,
		Renderer: renderer,
		Uploader: uploader,
		Users:    service.NewUsers(a.queries, a.pipeline.Named("admin")),
		Metrics:  m,
		Logger:   a.pipeline.Named("admin"),
	})
	ctx := context.Background()
	if err := registry.Refresh(ctx); err != nil {
		return fmt.Errorf("building admin namespaces: %w", err)
	}
	if registry.Len() == 0 {
		logger.Warn("no active superuser; create one with: studio createsuperuser")
	}
	m.GaugeFunc("admin_namespaces", "Admin namespaces currently routable.", func() float64 {
		return float64(registry.Len())
	})
	m.GaugeFunc("admin_namespaces_built_timestamp_seconds", "When the admin namespace table was last rebuilt.", func() float64 {
		return float64(registry.BuiltAt().Unix())
	})
	m.CounterFunc("log_sink_failures_total", "Failed writes to log sinks.", func() float64 {
		return float64(a.pipeline.Handler().Failures())
	})
	m.GaugeFunc("log_sinks_disabled", "Log topics whose sink could not be opened.", func() float64 {
		return float64(len(a.pipeline.Skipped()))
	})

	public := handler.NewPublic(a.queries, renderer, logger, m)
	public.SetIndexing(cfg.IsProduction())
	contactLimiter := middleware.NewRateLimiter(cfg.ContactRateLimit, cfg.ContactRateBurst, logger).MaskPaths(admin.MaskPath)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(logging.Middleware(logging.MiddlewareConfig{
		Logger:        a.pipeline.Named("requests"),
		SlowThreshold: logging.SlowRequestThreshold,
		MaskPath:      admin.MaskPath,
		Countries:     geo,
	}))
	r.Use(m.Middleware)
	r.Use(middleware.Recoverer(logger, admin.MaskPath))
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.RequestSize(cfg.MaxContentLength))
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SecretKey), logger, cfg.IsDevelopment())))

	r.Handle("/static/uploads/*", cacheControl(http.StripPrefix(imaging.PublicPrefix, http.FileServer(http.Dir(cfg.UploadsPath())))))
	r.Handle("/static/*", cacheControl(http.StripPrefix("/static/", http.FileServer(http.FS(web.StaticFiles())))))

	r.Mount("/{secret}/admin", registry)
	public.Routes(r, contactLimiter)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ErrorLog:          a.pipeline.StdLogger("http", slog.LevelWarn),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads on slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "admins", registry.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	for {
		select {
		case err, ok := <-serveErr:
			if ok {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case sig := <-signals:
			if sig == syscall.SIGHUP {
				if err := registry.Refresh(ctx); err != nil {
					logger.Error("admin namespace rebuild failed", "error", err)
				}
				if err := geo.Reload(); err != nil {
					logger.Warn("geoip reload failed", "error", err)
				}
				continue
			}

			logger.Info("shutting down server...", "signal", sig.String())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			logger.Info("server stopped", "uptime", public.Uptime().Round(time.Second).String())
			return nil
		}
	}
}

func cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", staticMaxAge)
		next.ServeHTTP(w, r)
	})
}
