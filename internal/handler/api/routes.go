// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/middleware"
)

// RouteOptions tunes the API router. Nil limiters disable rate limiting.
type RouteOptions struct {
	ContactLimiter *middleware.RateLimiter
	LoginLimiter   *middleware.RateLimiter
	DemoMode       bool
}

// Routes returns the router mounted at /api.
func (h *Handler) Routes(opts RouteOptions) chi.Router {
	r := chi.NewRouter()

	r.With(limit(opts.ContactLimiter)).Post("/contact", h.Contact)
	r.Get("/email/check", h.EmailCheck)

	r.Get("/projects", h.ListProjects)
	r.Get("/skills", h.ListSkills)
	r.Get("/blogs", h.ListBlogs)
	r.Get("/blogs/{slug}", h.GetBlogBySlug)

	r.Get("/theme", h.GetTheme)
	r.Post("/theme", h.SetTheme)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.With(limit(opts.LoginLimiter)).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.Session)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(h.gate))
		r.Use(middleware.NoStore)

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", h.ListMessages)
			r.Get("/{id}", h.GetMessage)
			r.Delete("/{id}", h.DeleteMessage)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListAdminProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.GetProject)
			r.Put("/{id}", h.UpdateProject)
			r.Patch("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)
		})

		r.Route("/skills", func(r chi.Router) {
			r.Get("/", h.ListAdminSkills)
			r.Post("/", h.CreateSkill)
			r.Get("/{id}", h.GetSkill)
			r.Put("/{id}", h.UpdateSkill)
			r.Patch("/{id}", h.UpdateSkill)
			r.Delete("/{id}", h.DeleteSkill)
		})

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", h.ListAdminBlogs)
			r.Post("/", h.CreateBlog)
			r.Get("/{id}", h.GetBlog)
			r.Put("/{id}", h.UpdateBlog)
			r.Patch("/{id}", h.UpdateBlog)
			r.Delete("/{id}", h.DeleteBlog)
		})

		r.Get("/export", h.Export)
		r.With(middleware.BlockInDemoMode(opts.DemoMode)).Post("/import", h.Import)

		r.Route("/uploads", func(r chi.Router) {
			r.Use(middleware.BlockInDemoMode(opts.DemoMode))
			r.Post("/", h.Upload)
			r.Delete("/{uploadID}", h.DeleteUpload)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return r
}

func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware()
}
