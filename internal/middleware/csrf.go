// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata headers rather than a
// token cookie, so state-changing API calls from the SPA need no token.
type CSRFConfig struct {
	// AuthKey is a 32-byte key. The library keeps it for API compatibility.
	AuthKey []byte

	// ErrorHandler is called when CSRF validation fails.
	ErrorHandler http.Handler

	// TrustedOrigins lists host[:port] values allowed to make cross-origin
	// state-changing requests.
	TrustedOrigins []string
}

// DefaultCSRFConfig trusts the configured CORS origins, plus localhost in
// development.
func DefaultCSRFConfig(authKey []byte, corsOrigins []string, isDev bool) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}

	for _, origin := range corsOrigins {
		if host := originHost(origin); host != "" {
			cfg.TrustedOrigins = append(cfg.TrustedOrigins, host)
		}
	}

	if isDev {
		cfg.TrustedOrigins = append(cfg.TrustedOrigins,
			"localhost:8080",
			"127.0.0.1:8080",
			"localhost:5173",
		)
	}

	return cfg
}

// originHost reduces an origin URL to the host[:port] form the library expects.
func originHost(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" || origin == "*" {
		return ""
	}
	if !strings.Contains(origin, "://") {
		return origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return u.Host
}

// CSRF returns a middleware that rejects cross-site state-changing requests.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	var opts []csrf.Option

	if cfg.ErrorHandler != nil {
		opts = append(opts, csrf.ErrorHandler(cfg.ErrorHandler))
	} else {
		opts = append(opts, csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)))
	}

	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reasonStr := "unknown"
	if reason := csrf.FailureReason(r); reason != nil {
		reasonStr = reason.Error()
	}
	slog.Warn("CSRF validation failed",
		"reason", reasonStr,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	WriteAPIError(w, http.StatusForbidden, "forbidden", "Cross-site request rejected", nil)
}

// SkipCSRF skips CSRF protection for requests authenticated by an
// Authorization header, which browsers never attach on their own.
func SkipCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			r = csrf.UnsafeSkipCheck(r)
		}
		next.ServeHTTP(w, r)
	})
}
