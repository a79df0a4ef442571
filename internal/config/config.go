// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMySQL    = "mysql"
)

// Auth modes.
const (
	AuthModeToken   = "token"
	AuthModeSession = "session"
)

// knownWeakSecrets contains example secrets that must never be used.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env       string `env:"FOLIO_ENV" envDefault:"development"`
	LogLevel  string `env:"FOLIO_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"FOLIO_LOG_FORMAT" envDefault:"text"`

	ServerHost string `env:"FOLIO_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"FOLIO_SERVER_PORT" envDefault:"8080"`
	SiteURL    string `env:"FOLIO_SITE_URL"` // Public origin for sitemap links; derived from the request when empty

	// Storage configuration
	Storage          string        `env:"FOLIO_STORAGE" envDefault:"memory"`
	DBPath           string        `env:"FOLIO_DB_PATH" envDefault:"./data/folio.db"`
	DatabaseURL      string        `env:"FOLIO_DATABASE_URL"`
	DBConnectRetries int           `env:"FOLIO_DB_CONNECT_RETRIES" envDefault:"5"`
	DBRetryDelay     time.Duration `env:"FOLIO_DB_RETRY_DELAY" envDefault:"2s"`

	// Authentication
	AuthMode       string        `env:"FOLIO_AUTH_MODE" envDefault:"token"`
	AuthSecret     string        `env:"FOLIO_AUTH_SECRET,required"`
	AuthTTL        time.Duration `env:"FOLIO_AUTH_TTL" envDefault:"24h"`
	CookieName     string        `env:"FOLIO_COOKIE_NAME" envDefault:"folio_auth"`
	CookieDomain   string        `env:"FOLIO_COOKIE_DOMAIN"`
	CookieSameSite string        `env:"FOLIO_COOKIE_SAMESITE" envDefault:"lax"`

	// Seeding
	AdminUsername string `env:"FOLIO_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"FOLIO_ADMIN_PASSWORD"`
	DoSeed        bool   `env:"FOLIO_DO_SEED" envDefault:"true"`
	DemoMode      bool   `env:"FOLIO_DEMO_MODE" envDefault:"false"`

	// Cache configuration
	RedisURL    string `env:"FOLIO_REDIS_URL"`                      // Optional Redis URL for shared caching
	CachePrefix string `env:"FOLIO_CACHE_PREFIX" envDefault:"folio:"` // Redis key prefix
	CacheTTL    int    `env:"FOLIO_CACHE_TTL" envDefault:"300"`      // Default cache TTL in seconds

	// Contact notifications
	EmailHost     string `env:"FOLIO_EMAIL_HOST"`
	EmailPort     int    `env:"FOLIO_EMAIL_PORT" envDefault:"587"`
	EmailUser     string `env:"FOLIO_EMAIL_USER"`
	EmailPassword string `env:"FOLIO_EMAIL_PASSWORD"`
	OwnerEmail    string `env:"FOLIO_OWNER_EMAIL"`
	WebhookURL    string `env:"FOLIO_WEBHOOK_URL"`
	WebhookSecret string `env:"FOLIO_WEBHOOK_SECRET"`

	CORSOrigins []string `env:"FOLIO_CORS_ORIGINS" envSeparator:","`
	ThemeFile   string   `env:"FOLIO_THEME_FILE" envDefault:"./theme.json"`
	UploadsDir  string   `env:"FOLIO_UPLOADS_DIR" envDefault:"./uploads"`
	GeoIPDBPath string   `env:"FOLIO_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Per-IP request rates (requests per second)
	ContactRate float64 `env:"FOLIO_CONTACT_RATE" envDefault:"0.2"`
	LoginRate   float64 `env:"FOLIO_LOGIN_RATE" envDefault:"0.5"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// EmailEnabled returns true if SMTP notifications are configured.
func (c Config) EmailEnabled() bool {
	return c.EmailHost != "" && c.OwnerEmail != ""
}

// WebhookEnabled returns true if a notification webhook is configured.
func (c Config) WebhookEnabled() bool {
	return c.WebhookURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// SecureCookies reports whether cookies must carry the Secure attribute.
func (c Config) SecureCookies() bool {
	return !c.IsDevelopment() || c.CookieSameSite == "none"
}

// SameSite maps the configured SameSite name to its http constant.
func (c Config) SameSite() http.SameSite {
	switch strings.ToLower(c.CookieSameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// MinAuthSecretLength is the minimum required length for the auth secret.
const MinAuthSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.AuthSecret) {
		slog.Warn("FOLIO_AUTH_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.AuthSecret) < MinAuthSecretLength {
		return fmt.Errorf("FOLIO_AUTH_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinAuthSecretLength, len(c.AuthSecret))
	}

	if slices.Contains(knownWeakSecrets, c.AuthSecret) {
		return fmt.Errorf("FOLIO_AUTH_SECRET is a known default value and must not be used; " +
			"generate a secure secret with: openssl rand -base64 32")
	}

	switch c.Storage {
	case StorageMemory, StorageSQLite:
	case StoragePostgres, StorageMySQL:
		if c.DatabaseURL == "" {
			return fmt.Errorf("FOLIO_DATABASE_URL is required when FOLIO_STORAGE=%s", c.Storage)
		}
	default:
		return fmt.Errorf("FOLIO_STORAGE must be one of memory, sqlite, postgres, mysql; got %q", c.Storage)
	}

	if c.AuthMode != AuthModeToken && c.AuthMode != AuthModeSession {
		return fmt.Errorf("FOLIO_AUTH_MODE must be %q or %q; got %q", AuthModeToken, AuthModeSession, c.AuthMode)
	}

	if c.AuthTTL <= 0 {
		return fmt.Errorf("FOLIO_AUTH_TTL must be positive")
	}

	switch strings.ToLower(c.CookieSameSite) {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("FOLIO_COOKIE_SAMESITE must be lax, strict or none; got %q", c.CookieSameSite)
	}

	if c.SiteURL != "" {
		u, err := url.Parse(c.SiteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("FOLIO_SITE_URL must be an absolute http(s) URL; got %q", c.SiteURL)
		}
		c.SiteURL = strings.TrimSuffix(c.SiteURL, "/")
	}

	if c.DemoMode && c.Storage != StorageMemory {
		return fmt.Errorf("FOLIO_DEMO_MODE requires FOLIO_STORAGE=memory")
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
