// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage, used for published bundles and avatars.
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BucketPublic string
	S3PublicURL    string

	// Site layout on disk and on the web.
	SiteURL         string
	RootPath        string
	ThemesPath      string
	ThemesURL       string
	AdminThemesPath string
	AdminThemesURL  string
	AssetsPath      string
	AssetsURL       string

	// Theme selection and rendering
	ThemeDefault         string
	ThemeAllowed         []string
	ThemeAllowUserSelect bool
	ThemePlugins         []string
	ContentCacheLifetime time.Duration
	ExtraCacheID         bool
	HeadersCacheEngine   string
	BufferOutput         bool
	TemplateWatch        bool

	// Localization
	LocaleDefault    string
	LocalesSupported []string

	// Session cookie name, also stripped from cached request URIs.
	SessionName string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	root := envOrDefault("ROOT_PATH", ".")
	siteURL := strings.TrimRight(envOrDefault("SITE_URL", "http://localhost:8080"), "/")

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "xotheme"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "xotheme"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3Region:       envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		S3BucketPublic: envOrDefault("S3_BUCKET_PUBLIC", "xotheme-public"),
		S3PublicURL:    os.Getenv("S3_PUBLIC_URL"),

		SiteURL:         siteURL,
		RootPath:        root,
		ThemesPath:      envOrDefault("THEMES_PATH", root+"/themes"),
		ThemesURL:       envOrDefault("THEMES_URL", siteURL+"/themes"),
		AdminThemesPath: envOrDefault("ADMIN_THEMES_PATH", root+"/modules/system/themes"),
		AdminThemesURL:  envOrDefault("ADMIN_THEMES_URL", siteURL+"/modules/system/themes"),
		AssetsPath:      envOrDefault("ASSETS_PATH", root+"/assets"),
		AssetsURL:       envOrDefault("ASSETS_URL", siteURL+"/assets"),

		ThemeDefault:         envOrDefault("THEME_DEFAULT", "default"),
		ThemeAllowed:         envList("THEME_ALLOWED"),
		ThemeAllowUserSelect: envBool("THEME_ALLOW_USER_SELECT", true),
		ThemePlugins:         envListOrDefault("THEME_PLUGINS", []string{"blocks"}),
		ContentCacheLifetime: time.Duration(envInt("CONTENT_CACHE_LIFETIME", 0)) * time.Second,
		ExtraCacheID:         envBool("EXTRA_CACHE_ID", true),
		HeadersCacheEngine:   envOrDefault("HEADERS_CACHE_ENGINE", "default"),
		BufferOutput:         envBool("BUFFER_OUTPUT", false),
		TemplateWatch:        envBool("TEMPLATE_WATCH", false),

		LocaleDefault:    envOrDefault("LOCALE_DEFAULT", "en"),
		LocalesSupported: envListOrDefault("LOCALES_SUPPORTED", []string{"en"}),

		SessionName: envOrDefault("SESSION_NAME", "xotheme_session"),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envList splits a comma separated variable, dropping empty items.
// An unset variable yields nil.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// envListOrDefault is envList with a fallback for unset variables. The
// value "none" yields an empty, non-nil list.
func envListOrDefault(key string, fallback []string) []string {
	if os.Getenv(key) == "none" {
		return []string{}
	}
	if l := envList(key); l != nil {
		return l
	}
	return fallback
}
