// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/config"
	"github.com/olegiv/folio-go/internal/handler"
	"github.com/olegiv/folio-go/internal/handler/api"
	"github.com/olegiv/folio-go/internal/imaging"
	"github.com/olegiv/folio-go/internal/notify"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/testutil"
	"github.com/olegiv/folio-go/internal/theme"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Env:            "production",
		AuthSecret:     testSecret,
		CookieName:     "folio_auth",
		CookieSameSite: "lax",
		UploadsDir:     dir,
	}

	st := store.NewMemoryStore()
	authn, err := auth.NewAuthenticator(st)
	if err != nil {
		t.Fatal(err)
	}
	gate := auth.NewTokenGate(auth.NewTokenCodec([]byte(testSecret), time.Hour), auth.CookieConfig{Name: cfg.CookieName})
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	logger := testutil.TestLoggerSilent()
	apiHandler := api.NewHandler(api.Config{
		Store:         st,
		Authenticator: authn,
		Gate:          gate,
		Cache:         c,
		CacheTTL:      time.Minute,
		Notifier:      notify.New(logger, notify.Config{}),
		Themes:        theme.NewFileStore(dir + "/theme.json"),
		Images:        imaging.NewProcessor(dir, "/uploads"),
		Logger:        logger,
	})

	r, err := newRouter(routerDeps{
		cfg:    cfg,
		gate:   gate,
		api:    apiHandler,
		health: handler.NewHealthHandler(st, c, dir),
		seo:    handler.NewSEOHandler(handler.SEOConfig{Blogs: st, Cache: c, SiteURL: "https://folio.example"}),
	})
	if err != nil {
		t.Fatalf("newRouter() error = %v", err)
	}
	return r
}

func TestRouter_Endpoints(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"landing page", "/", http.StatusOK, "<h1>Folio</h1>"},
		{"stylesheet", "/static/app.css", http.StatusOK, "color-scheme"},
		{"health", "/health", http.StatusOK, `"status":"healthy"`},
		{"liveness", "/health/live", http.StatusOK, `"alive"`},
		{"readiness", "/health/ready", http.StatusOK, `"ready"`},
		{"projects", "/api/projects", http.StatusOK, "[]"},
		{"sitemap", "/sitemap.xml", http.StatusOK, "<loc>https://folio.example/</loc>"},
		{"robots", "/robots.txt", http.StatusOK, "Disallow: /api/"},
		{"security.txt without owner", "/.well-known/security.txt", http.StatusNotFound, ""},
		{"unknown api route", "/api/nope", http.StatusNotFound, `"success":false`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want substring %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestRouter_CrossSiteWriteRejected(t *testing.T) {
	r := newTestRouter(t)
	body := `{"name":"Jane","email":"jane@x.com","subject":"Hi","message":"Hello there, friend"}`

	tests := []struct {
		name       string
		header     map[string]string
		wantStatus int
	}{
		{"cross-site browser request", map[string]string{"Sec-Fetch-Site": "cross-site"}, http.StatusForbidden},
		{"same-origin browser request", map[string]string{"Sec-Fetch-Site": "same-origin"}, http.StatusCreated},
		{"non-browser client", nil, http.StatusCreated},
		{"bearer authenticated", map[string]string{"Sec-Fetch-Site": "cross-site", "Authorization": "Bearer x"}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusForbidden {
				var env struct {
					Success bool `json:"success"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil || env.Success {
					t.Errorf("body = %s, want JSON error envelope", w.Body.String())
				}
			}
		})
	}
}
