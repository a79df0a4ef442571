// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveWithHeaders(cfg SecurityHeadersConfig) http.Header {
	handler := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	return rr.Header()
}

func TestSecurityHeaders_Production(t *testing.T) {
	h := serveWithHeaders(DefaultSecurityHeadersConfig(false))

	if got := h.Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
	if got := h.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := h.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	csp := h.Get("Content-Security-Policy")
	if !strings.HasPrefix(csp, "default-src 'self'; script-src 'self';") {
		t.Errorf("CSP = %q", csp)
	}
	if !strings.Contains(csp, "frame-ancestors 'none'") {
		t.Errorf("CSP missing frame-ancestors: %q", csp)
	}
	if !strings.Contains(h.Get("Permissions-Policy"), "camera=()") {
		t.Errorf("Permissions-Policy = %q", h.Get("Permissions-Policy"))
	}
}

func TestSecurityHeaders_DevelopmentSkipsHSTS(t *testing.T) {
	h := serveWithHeaders(DefaultSecurityHeadersConfig(true))

	if got := h.Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS in development = %q", got)
	}
	if !strings.Contains(h.Get("Content-Security-Policy"), "'unsafe-eval'") {
		t.Error("development CSP should allow eval for the dev server")
	}
}

func TestBuildCSP_Order(t *testing.T) {
	got := buildCSP(map[string]string{
		"report-to":   "csp",
		"img-src":     "'self'",
		"default-src": "'none'",
	})
	want := "default-src 'none'; img-src 'self'; report-to csp"
	if got != want {
		t.Errorf("buildCSP() = %q, want %q", got, want)
	}
}

func TestBuildPermissionsPolicy_Sorted(t *testing.T) {
	got := buildPermissionsPolicy(map[string]string{"usb": "()", "camera": "()"})
	if got != "camera=(), usb=()" {
		t.Errorf("buildPermissionsPolicy() = %q", got)
	}
}
