// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/seo"
	"github.com/olegiv/folio-go/internal/store"
)

// sitemapTTL bounds how stale a cached sitemap can get.
const sitemapTTL = time.Hour

// SEOConfig configures SEOHandler.
type SEOConfig struct {
	Blogs store.BlogStore
	// Cache may be nil. Sitemaps are stored under cache.PrefixBlogs so
	// blog writes invalidate them.
	Cache cache.Cache
	// SiteURL is the public origin. Empty derives it from the request.
	SiteURL    string
	OwnerEmail string
	// HideFromCrawlers disallows everything in robots.txt.
	HideFromCrawlers bool
	Logger           *slog.Logger
}

// SEOHandler serves sitemap.xml, robots.txt and security.txt.
type SEOHandler struct {
	cfg SEOConfig
}

// NewSEOHandler creates a new SEO handler.
func NewSEOHandler(cfg SEOConfig) *SEOHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SEOHandler{cfg: cfg}
}

// Sitemap lists the homepage, the sections and every published post.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	siteURL := h.siteURL(r)

	var (
		xml []byte
		err error
	)
	if h.cfg.Cache != nil {
		xml, err = cache.GetOrLoad(r.Context(), h.cfg.Cache, cache.PrefixBlogs+"sitemap:"+siteURL, sitemapTTL,
			func(ctx context.Context) ([]byte, error) { return h.buildSitemap(ctx, siteURL) })
	} else {
		xml, err = h.buildSitemap(r.Context(), siteURL)
	}
	if err != nil {
		h.cfg.Logger.ErrorContext(r.Context(), "failed to build sitemap", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(xml)
}

func (h *SEOHandler) buildSitemap(ctx context.Context, siteURL string) ([]byte, error) {
	blogs, err := h.cfg.Blogs.ListBlogs(ctx, store.BlogFilter{PublishedOnly: true})
	if err != nil {
		return nil, err
	}
	posts := make([]seo.SitemapPost, 0, len(blogs))
	for _, b := range blogs {
		posts = append(posts, seo.SitemapPost{Slug: b.Slug, UpdatedAt: b.UpdatedAt})
	}
	return seo.GenerateSitemap(siteURL, posts)
}

// Robots serves robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	body := seo.GenerateRobots(h.siteURL(r), h.cfg.HideFromCrawlers)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(body))
}

// SecurityTxt serves /.well-known/security.txt, or 404 without an owner email.
func (h *SEOHandler) SecurityTxt(w http.ResponseWriter, r *http.Request) {
	body := seo.GenerateSecurityTxt(h.siteURL(r), h.cfg.OwnerEmail)
	if body == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(body))
}

// siteURL returns the configured origin or one built from the request.
func (h *SEOHandler) siteURL(r *http.Request) string {
	if h.cfg.SiteURL != "" {
		return h.cfg.SiteURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
