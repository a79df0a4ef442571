// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/config"
	"github.com/olegiv/folio-go/internal/demo"
	"github.com/olegiv/folio-go/internal/geoip"
	"github.com/olegiv/folio-go/internal/handler"
	"github.com/olegiv/folio-go/internal/handler/api"
	"github.com/olegiv/folio-go/internal/imaging"
	"github.com/olegiv/folio-go/internal/logging"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/notify"
	"github.com/olegiv/folio-go/internal/scheduler"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/theme"
	"github.com/olegiv/folio-go/internal/util"
	"github.com/olegiv/folio-go/internal/version"
	"github.com/olegiv/folio-go/internal/webhook"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "folio - portfolio backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_AUTH_SECRET      Token and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_STORAGE          memory|sqlite|postgres|mysql (default: memory)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_DB_PATH          SQLite database path (default: ./data/folio.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_DATABASE_URL     PostgreSQL or MySQL connection URL\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_AUTH_MODE        token|session (default: token)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_ADMIN_PASSWORD   Password for the seeded admin user\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_REDIS_URL        Redis URL for shared caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/folio-go\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("folio %s\n", version.Current())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// backend is the opened storage layer.
type backend struct {
	store   store.Store
	memory  *store.MemoryStore // set for FOLIO_STORAGE=memory
	db      *sql.DB            // set for relational storage
	dialect store.Dialect
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)
	slog.Info("starting folio", "version", version.Current().String(), "env", cfg.Env)

	ctx := context.Background()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.store.Close(); err != nil {
			slog.Error("error closing store", "error", err)
		}
	}()

	seedOpts, err := seedOptions(cfg)
	if err != nil {
		return err
	}
	if cfg.DoSeed {
		if err := store.Seed(ctx, be.store, seedOpts); err != nil {
			return fmt.Errorf("seeding store: %w", err)
		}
	}

	authenticator, err := auth.NewAuthenticator(be.store)
	if err != nil {
		return fmt.Errorf("initializing authenticator: %w", err)
	}

	var (
		gate           auth.Gate
		sessionManager *scs.SessionManager
	)
	switch cfg.AuthMode {
	case config.AuthModeSession:
		sessionManager = session.New(session.Options{
			DB:       be.db,
			Dialect:  be.dialect,
			Lifetime: cfg.AuthTTL,
			Secure:   cfg.SecureCookies(),
			SameSite: cfg.SameSite(),
			Domain:   cfg.CookieDomain,
		})
		gate = auth.NewSessionGate(sessionManager)
	default:
		codec := auth.NewTokenCodec([]byte(cfg.AuthSecret), cfg.AuthTTL)
		gate = auth.NewTokenGate(codec, auth.CookieConfig{
			Name:     cfg.CookieName,
			Domain:   cfg.CookieDomain,
			Secure:   cfg.SecureCookies(),
			SameSite: cfg.SameSite(),
		})
	}
	slog.Info("auth gate initialized", "mode", cfg.AuthMode)

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	readCache, cacheBackend, err := cache.New(ctx, cache.Config{
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       cacheTTL,
		FallbackToMemory: true,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = readCache.Close() }()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", cacheBackend, "url", cache.MaskRedisURL(cfg.RedisURL))
	} else {
		slog.Info("cache initialized", "backend", cacheBackend)
	}

	var dispatcher *webhook.Dispatcher
	notifyCfg := notify.Config{}
	if cfg.WebhookEnabled() {
		if err := util.ValidateWebhookURL(ctx, cfg.WebhookURL); err != nil {
			slog.Warn("webhook URL rejected, webhook notifications disabled", "error", err)
		} else {
			dispatcher = webhook.NewDispatcher(logger, webhook.Config{
				URL:     cfg.WebhookURL,
				Secret:  cfg.WebhookSecret,
				Workers: webhook.DefaultConfig().Workers,
			})
			dispatcher.Start(ctx)
			notifyCfg.Webhook = dispatcher
			slog.Info("webhook dispatcher initialized")
		}
	}

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("failed to load GeoIP database, country lookup disabled", "path", cfg.GeoIPDBPath, "error", err)
	} else if geo.Enabled() {
		slog.Info("GeoIP database loaded", "path", cfg.GeoIPDBPath)
	}
	defer func() { _ = geo.Close() }()
	notifyCfg.GeoIP = geo

	if cfg.EmailEnabled() {
		notifyCfg.Mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.EmailHost,
			Port:     cfg.EmailPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPassword,
		})
		notifyCfg.From = cfg.EmailUser
		if notifyCfg.From == "" {
			notifyCfg.From = cfg.OwnerEmail
		}
		notifyCfg.To = cfg.OwnerEmail
		slog.Info("email notifications enabled", "host", cfg.EmailHost, "port", cfg.EmailPort)
	}
	notifier := notify.New(logger, notifyCfg)

	images := imaging.NewProcessor(cfg.UploadsDir, "/uploads")
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	contactLimiter := middleware.NewRateLimiter(cfg.ContactRate, 3)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRate, 5)

	sched := scheduler.New(logger, time.Local)
	if dispatcher != nil {
		if err := sched.Add("webhook-retry", "@every 1m", func(ctx context.Context) error {
			if n := dispatcher.RetryDue(ctx); n > 0 {
				slog.Info("requeued webhook deliveries", "count", n)
			}
			return nil
		}); err != nil {
			return err
		}
	}
	if err := sched.Add("limiter-prune", "@every 10m", func(context.Context) error {
		removed := contactLimiter.Prune(30*time.Minute) + loginLimiter.Prune(30*time.Minute)
		slog.Debug("pruned idle rate limiters", "removed", removed)
		return nil
	}); err != nil {
		return err
	}
	if geo.Enabled() {
		if err := sched.Add("geoip-reload", "@daily", func(context.Context) error {
			return geo.Reload()
		}); err != nil {
			return err
		}
	}
	if cfg.DemoMode {
		resetter := demo.NewResetter(demo.Config{
			Store:      be.memory,
			Seed:       seedOpts,
			Cache:      readCache,
			UploadsDir: cfg.UploadsDir,
			DataDir:    filepath.Dir(cfg.DBPath),
			Logger:     logger,
		})
		if _, err := resetter.ResetIfNeeded(ctx); err != nil {
			slog.Warn("demo reset at startup failed", "error", err)
		}
		if err := sched.Add("demo-reset", "0 3 * * *", resetter.Reset); err != nil {
			return err
		}
		slog.Info("demo mode enabled, data resets nightly")
	}
	sched.Start()

	apiHandler := api.NewHandler(api.Config{
		Store:         be.store,
		Authenticator: authenticator,
		Gate:          gate,
		Cache:         readCache,
		CacheTTL:      cacheTTL,
		Notifier:      notifier,
		Themes:        theme.NewFileStore(cfg.ThemeFile),
		Images:        images,
		EmailHost:     cfg.EmailHost,
		UploadsDir:    cfg.UploadsDir,
		Logger:        logger,
	})
	healthHandler := handler.NewHealthHandler(be.store, readCache, cfg.UploadsDir)
	seoHandler := handler.NewSEOHandler(handler.SEOConfig{
		Blogs:            be.store,
		Cache:            readCache,
		SiteURL:          cfg.SiteURL,
		OwnerEmail:       cfg.OwnerEmail,
		HideFromCrawlers: cfg.DemoMode,
		Logger:           logger,
	})

	r, err := newRouter(routerDeps{
		cfg:            cfg,
		gate:           gate,
		sessionManager: sessionManager,
		api:            apiHandler,
		health:         healthHandler,
		seo:            seoHandler,
		apiOptions: api.RouteOptions{
			ContactLimiter: contactLimiter,
			LoginLimiter:   loginLimiter,
			DemoMode:       cfg.DemoMode,
		},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for image uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	sched.Stop(shutdownCtx)
	if err := notifier.Wait(shutdownCtx); err != nil {
		slog.Warn("pending notifications abandoned", "error", err)
	}
	if dispatcher != nil {
		dispatcher.Stop()
	}

	slog.Info("server stopped")
	return nil
}

// openBackend opens the configured storage and applies migrations.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	var (
		dialect store.Dialect
		dsn     string
	)
	switch cfg.Storage {
	case config.StorageMemory:
		mem := store.NewMemoryStore()
		slog.Info("using in-memory storage; data is lost on restart")
		return &backend{store: mem, memory: mem}, nil
	case config.StorageSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dialect, dsn = store.DialectSQLite, cfg.DBPath
	case config.StoragePostgres:
		dialect, dsn = store.DialectPostgres, cfg.DatabaseURL
	case config.StorageMySQL:
		dialect, dsn = store.DialectMySQL, cfg.DatabaseURL
	}

	dbCfg := store.DefaultDBConfig()
	dbCfg.ConnectRetries = cfg.DBConnectRetries
	dbCfg.RetryDelay = cfg.DBRetryDelay

	slog.Info("initializing database", "dialect", dialect)
	db, err := store.Open(ctx, dialect, dsn, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	slog.Info("running database migrations")
	if err := store.Migrate(db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	return &backend{store: store.NewSQLStore(db, dialect), db: db, dialect: dialect}, nil
}

// seedOptions hashes the configured admin password. Without a password no
// admin is seeded.
func seedOptions(cfg *config.Config) (store.SeedOptions, error) {
	opts := store.SeedOptions{
		AdminUsername: cfg.AdminUsername,
		SampleContent: true,
	}
	if cfg.AdminPassword == "" {
		slog.Warn("FOLIO_ADMIN_PASSWORD is not set; no admin user will be seeded")
		return opts, nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return opts, fmt.Errorf("hashing admin password: %w", err)
	}
	opts.AdminPasswordHash = hash
	return opts, nil
}
