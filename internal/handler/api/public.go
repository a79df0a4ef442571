// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/content"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
)

// BlogResponse is a single blog post with its rendered body.
type BlogResponse struct {
	model.Blog
	ContentHTML string   `json:"contentHtml"`
	TagList     []string `json:"tagList"`
}

// ListProjects handles GET /api/projects[?featured=true].
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	featured := r.URL.Query().Get("featured") == "true"

	key := cache.PrefixProjects + "all"
	if featured {
		key = cache.PrefixProjects + "featured"
	}

	projects, err := cached(h, r.Context(), key, func(ctx context.Context) ([]model.Project, error) {
		return h.store.ListProjects(ctx, store.ProjectFilter{FeaturedOnly: featured})
	})
	if err != nil {
		h.WriteInternalError(w, r, "Failed to retrieve projects", err)
		return
	}
	WriteSuccess(w, nonNil(projects))
}

// ListSkills handles GET /api/skills[?category=x].
func (h *Handler) ListSkills(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	key := cache.PrefixSkills + "all"
	if category != "" {
		key = cache.PrefixSkills + "category:" + url.QueryEscape(category)
	}

	skills, err := cached(h, r.Context(), key, func(ctx context.Context) ([]model.Skill, error) {
		return h.store.ListSkills(ctx, store.SkillFilter{Category: category})
	})
	if err != nil {
		h.WriteInternalError(w, r, "Failed to retrieve skills", err)
		return
	}
	WriteSuccess(w, nonNil(skills))
}

// ListBlogs handles GET /api/blogs. Only published posts are listed.
func (h *Handler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := cached(h, r.Context(), cache.PrefixBlogs+"published", func(ctx context.Context) ([]model.Blog, error) {
		return h.store.ListBlogs(ctx, store.BlogFilter{PublishedOnly: true})
	})
	if err != nil {
		h.WriteInternalError(w, r, "Failed to retrieve blogs", err)
		return
	}
	WriteSuccess(w, nonNil(blogs))
}

// GetBlogBySlug handles GET /api/blogs/{slug}. Drafts answer 404.
func (h *Handler) GetBlogBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" || len(slug) > 2*maxTitleLength {
		WriteNotFound(w, "Blog post not found")
		return
	}

	resp, err := cached(h, r.Context(), cache.PrefixBlogs+"slug:"+url.PathEscape(slug), func(ctx context.Context) (BlogResponse, error) {
		blog, err := h.store.GetBlogBySlug(ctx, slug)
		if err != nil {
			return BlogResponse{}, err
		}
		if !blog.Published {
			return BlogResponse{}, store.ErrNotFound
		}
		return renderBlog(*blog)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Blog post not found")
			return
		}
		h.WriteInternalError(w, r, "Failed to retrieve blog post", err)
		return
	}
	WriteSuccess(w, resp)
}

func renderBlog(b model.Blog) (BlogResponse, error) {
	html, err := content.Render(b.Content)
	if err != nil {
		return BlogResponse{}, err
	}
	return BlogResponse{Blog: b, ContentHTML: html, TagList: nonNil(b.TagList())}, nil
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
