// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/config"
	"github.com/olegiv/folio-go/internal/handler"
	"github.com/olegiv/folio-go/internal/handler/api"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/web"
)

// uploadsMaxAge is the browser cache lifetime for uploaded images.
const uploadsMaxAge = 30 * 24 * 60 * 60

type routerDeps struct {
	cfg            *config.Config
	gate           auth.Gate
	sessionManager *scs.SessionManager // nil in token mode
	api            *api.Handler
	health         *handler.HealthHandler
	seo            *handler.SEOHandler
	apiOptions     api.RouteOptions
}

func newRouter(d routerDeps) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestPath)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(d.cfg.IsDevelopment())))
	r.Use(middleware.CORS(d.cfg.CORSOrigins))
	if d.sessionManager != nil {
		r.Use(d.sessionManager.LoadAndSave)
	}
	r.Use(middleware.SkipCSRF)
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(d.cfg.AuthSecret), d.cfg.CORSOrigins, d.cfg.IsDevelopment())))

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalIdentity(d.gate))
		r.Use(middleware.NoStore)
		r.Get("/health", d.health.Health)
		r.Get("/health/live", d.health.Liveness)
		r.Get("/health/ready", d.health.Readiness)
	})

	r.Mount("/api", d.api.Routes(d.apiOptions))

	r.Get("/sitemap.xml", d.seo.Sitemap)
	r.Get("/robots.txt", d.seo.Robots)
	r.Get("/.well-known/security.txt", d.seo.SecurityTxt)

	// Uploads: cache for 30 days
	uploadsHandler := middleware.StaticCache(uploadsMaxAge)(http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.cfg.UploadsDir))))
	r.Handle("/uploads/*", uploadsHandler)

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("getting static fs: %w", err)
	}
	// Static assets: cache for 1 hour
	staticHandler := middleware.StaticCache(3600)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/*", staticHandler)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFileFS(w, req, staticFS, "index.html")
	})

	return r, nil
}
