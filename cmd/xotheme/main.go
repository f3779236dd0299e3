// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the xotheme site server.
// It loads configuration, connects to services, wires the theme layer,
// sets up routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"xotheme/internal/assets"
	"xotheme/internal/avatar"
	"xotheme/internal/cache"
	"xotheme/internal/cacheid"
	"xotheme/internal/config"
	"xotheme/internal/database"
	"xotheme/internal/handlers"
	"xotheme/internal/locale"
	"xotheme/internal/meta"
	"xotheme/internal/metrics"
	"xotheme/internal/middleware"
	"xotheme/internal/plugins/blocks"
	"xotheme/internal/router"
	"xotheme/internal/session"
	"xotheme/internal/storage"
	"xotheme/internal/store"
	"xotheme/internal/theme"
	"xotheme/internal/tpl"
	"xotheme/web"
)

// headerPurgeInterval is how often expired rows of the database headers
// cache are deleted.
const headerPurgeInterval = 10 * time.Minute

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"root", cfg.RootPath,
		"default_theme", cfg.ThemeDefault,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions, headers cache, content cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	sessionStore := session.NewStore(valkeyClient, cfg.SessionName, !cfg.IsDev())

	promRegistry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(promRegistry)

	// Connect to S3-compatible object storage (optional).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3BucketPublic, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3BucketPublic)
	} else {
		slog.Warn("s3 storage not configured, bundles are written to disk")
	}

	// Asset bundles read site files first, then the embedded core scripts.
	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open embedded static files", "error", err)
		os.Exit(1)
	}
	var publisher assets.Publisher = &assets.LocalPublisher{Dir: cfg.AssetsPath, BaseURL: cfg.AssetsURL}
	if storageClient != nil {
		publisher = &assets.S3Publisher{Store: storageClient, Prefix: "assets"}
	}
	bundler := assets.NewManager(assets.Options{
		Sources:   []fs.FS{os.DirFS(cfg.RootPath), staticFS},
		RootPath:  cfg.RootPath,
		SiteURL:   cfg.SiteURL,
		Publisher: publisher,
		Recorder:  recorder,
	})
	if err := bundler.RegisterReference("jquery", []string{"include/jquery/jquery*.js"}, nil); err != nil {
		slog.Error("failed to register jquery reference", "error", err)
		os.Exit(1)
	}

	// Headers cache engines, selectable per theme by name.
	headersValkey := cache.NewValkeyStore(valkeyClient, "headers:")
	headersMemory := cache.NewMemoryStore()
	headersModel := store.NewHeaderCacheStore(db)
	headers := cache.NewRegistry(headersValkey)
	headers.Register(cache.EngineMemory, headersMemory)
	headers.Register(cache.EngineModel, headersModel)

	// Rendered content templates are cached in Valkey.
	contentCache := cache.NewValkeyStore(valkeyClient, "output:")
	engine := tpl.NewEngine(tpl.Options{RootPath: cfg.RootPath, Output: contentCache})

	plugins := theme.NewPluginRegistry()
	blocks.Register(plugins, store.NewBlockStore(db))

	onLoad := theme.NewOnLoadRegistry()
	onLoad.Register("*", func(_ context.Context, t *theme.Theme) error {
		t.AddMeta(meta.CategoryMeta, "generator", "xotheme")
		return nil
	})

	var avatarFiles avatar.FileURLer
	if storageClient != nil {
		avatarFiles = storageClient
	}

	factory := theme.NewFactory(cfg, theme.Services{
		Engine:   engine,
		Assets:   bundler,
		Headers:  headers,
		Avatars:  avatar.New(avatarFiles, true),
		Plugins:  plugins,
		OnLoad:   onLoad,
		Recorder: recorder,
	})
	adminFactory := theme.NewAdminFactory(factory, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reload templates and rebuild bundles when theme files change.
	if cfg.TemplateWatch {
		engine.OnChange(func(string) { bundler.Reset() })
		go func() {
			dirs := []string{cfg.ThemesPath, cfg.AdminThemesPath, filepath.Join(cfg.RootPath, "modules")}
			if err := engine.Watch(ctx, dirs...); err != nil {
				slog.Error("template watcher stopped", "error", err)
			}
		}()
	}

	go purgeHeaders(ctx, headersModel)

	userStore := store.NewUserStore(db)
	moduleStore := store.NewModuleStore(db)

	pageHandlers := handlers.NewPages(factory, moduleStore, engine)
	authHandlers := handlers.NewAuth(factory, sessionStore, userStore)
	adminHandlers := handlers.NewAdmin(adminFactory, engine, map[string]handlers.CacheFlusher{
		cache.EngineDefault: headersValkey,
		cache.EngineMemory:  headersMemory,
		cache.EngineModel:   headersModel,
		"content":           contentCache,
	}, bundler.Reset)

	r := router.New(router.Deps{
		Sessions: sessionStore,
		Site: middleware.SiteConfig{
			Settings: store.NewSiteSettingStore(db),
			Locales:  locale.NewNegotiator(cfg.LocalesSupported, cfg.LocaleDefault),
			CacheIDs: cacheid.NewGenerator(cfg.ExtraCacheID, cfg.DBPassword, cfg.DBName, cfg.DBUser),
			Sessions: sessionStore,
			SiteURL:  cfg.SiteURL,
		},
		Pages:   pageHandlers,
		Auth:    authHandlers,
		Admin:   adminHandlers,
		Metrics: metrics.HTTPHandler(promRegistry),
		Static: map[string]http.Handler{
			"/themes/":                http.FileServer(http.Dir(cfg.ThemesPath)),
			"/modules/system/themes/": http.FileServer(http.Dir(cfg.AdminThemesPath)),
			"/assets/":                http.FileServer(http.Dir(cfg.AssetsPath)),
			"/static/":                http.FileServerFS(staticFS),
		},
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)
	cancel()

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// purgeHeaders deletes expired database headers cache rows until ctx ends.
func purgeHeaders(ctx context.Context, s *store.HeaderCacheStore) {
	ticker := time.NewTicker(headerPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeExpired(ctx); err != nil {
				slog.Warn("header cache purge failed", "error", err)
			}
		}
	}
}
