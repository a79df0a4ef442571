// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/content"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/util"
)

// ---- Messages ----

// ListMessages handles GET /api/admin/messages.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.store.ListMessages(r.Context())
	if err != nil {
		h.WriteInternalError(w, r, "Failed to retrieve messages", err)
		return
	}
	WriteSuccess(w, nonNil(messages))
}

// GetMessage handles GET /api/admin/messages/{id}.
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, ok := requireEntityByID(h, w, r, "message", h.store.GetMessage)
	if !ok {
		return
	}
	WriteSuccess(w, msg)
}

// DeleteMessage handles DELETE /api/admin/messages/{id}.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	h.deleteEntityByID(w, r, "message", h.store.DeleteMessage)
}

// ---- Projects ----

// ProjectRequest is the body of project writes. Absent fields are left
// unchanged on update.
type ProjectRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Technologies *[]string `json:"technologies"`
	ImageURL     *string   `json:"imageUrl"`
	DemoURL      *string   `json:"demoUrl"`
	RepoURL      *string   `json:"repoUrl"`
	Featured     *bool     `json:"featured"`
	Order        *int      `json:"order"`
}

func (req *ProjectRequest) normalize() {
	trimPtr(req.Title, req.Description, req.ImageURL, req.DemoURL, req.RepoURL)
	if req.Technologies != nil {
		techs := make([]string, 0, len(*req.Technologies))
		for _, t := range *req.Technologies {
			if t = strings.TrimSpace(t); t != "" {
				techs = append(techs, t)
			}
		}
		req.Technologies = &techs
	}
}

func (req *ProjectRequest) validate(create bool) fieldErrors {
	errs := fieldErrors{}
	if create || req.Title != nil {
		if errs.required("title", deref(req.Title), "Title") {
			errs.maxLength("title", *req.Title, maxTitleLength, "Title")
		}
	}
	if create || req.Description != nil {
		errs.required("description", deref(req.Description), "Description")
	}
	if req.Technologies != nil {
		for _, t := range *req.Technologies {
			errs.maxLength("technologies", t, maxShortLength, "Technology name")
		}
	}
	errs.link("imageUrl", deref(req.ImageURL))
	errs.link("demoUrl", deref(req.DemoURL))
	errs.link("repoUrl", deref(req.RepoURL))
	return errs
}

// ListAdminProjects handles GET /api/admin/projects.
func (h *Handler) ListAdminProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context(), store.ProjectFilter{})
	if err != nil {
		h.WriteInternalError(w, r, "Failed to retrieve projects", err)
		return
	}
	WriteSuccess(w, nonNil(projects))
}

// GetProject handles GET /api/admin/projects/{id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(h, w, r, "project", h.store.GetProject)
	if !ok {
		return
	}
	WriteSuccess(w, project)
}

// CreateProject handles POST /api/admin/projects.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.normalize()
	if errs := req.validate(true); len(errs) > 0 {
		WriteValidationError(w, "Validation failed", errs)
		return
	}

	in := model.NewProject{
		Title:        *req.Title,
		Description:  *req.Description,
		Technologies: []string{},
		ImageURL:     deref(req.ImageURL),
		DemoURL:      deref(req.DemoURL),
		RepoURL:      deref(req.RepoURL),
		Featured:     deref(req.Featured),
		Order:        deref(req.Order),
	}
	if req.Technologies != nil {
		in.Technologies = *req.Technologies
	}

	project, err := h.store.CreateProject(r.Context(), in)
	if err != nil {
		h.WriteInternalError(w, r, "Failed to create project", err)
		return
	}

	h.invalidate(r.Context(), cache.PrefixProjects)
	h.logger.InfoContext(r.Context(), "project created", "id", project.ID, "title", project.Title)
	WriteCreated(w, project)
}

// UpdateProject handles PUT /api/admin/projects/{id}.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid project ID", nil)
		return
	}

	var req ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.normalize()
	if errs := req.validate(false); len(errs) > 0 {
		WriteValidationError(w, "Validation failed", errs)
		return
	}

	project, err := h.store.UpdateProject(r.Context(), id, model.ProjectPatch{
		Title:        req.Title,
		Description:  req.Description,
		Technologies: req.Technologies,
		ImageURL:     req.ImageURL,
		DemoURL:      req.DemoURL,
		RepoURL:      req.RepoURL,
		Featured:     req.Featured,
		Order:        req.Order,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Project not found")
			return
		}
		h.WriteInternalError(w, r, "Failed to update project", err)
		return
	}

	h.invalidate(r.Context(), cache.PrefixProjects)
	h.logger.InfoContext(r.Context(), "project updated", "id", project.ID)
	WriteSuccess(w, project)
}

// DeleteProject handles DELETE /api/admin/projects/{id}.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if h.deleteEntityByID(w, r, "project", h.store.DeleteProject) {
		h.invalidate(r.Context(), cache.PrefixProjects)
	}
}

// ---- Skills ----

// SkillRequest is the body of skill writes.
type SkillRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Level    *int    `json:"level"`
	IconName *string `json:"iconName"`
}

func (req *SkillRequest) validate(create bool) fieldErrors {
	trimPtr(req.Name, req.Category, req.IconName)

	errs := fieldErrors{}
	if create || req.Name != nil {
		if errs.required("name", deref(req.Name), "Name") {
			errs.maxLength("name", *req.Name, maxShortLength, "Name")
		}
	}
	if create || req.Category != nil {
		if errs.required("category", deref(req.Category), "Category") {
			errs.maxLength("category", *req.Category, maxShortLength, "Category")
		}
	}
	if req.Level != nil {
		errs.level("level", *req.Level)
	}
	errs.maxLength("iconName", deref(req.IconName), maxShortLength, "Icon name")
	return errs
}

// ListAdminSkills handles GET /api/admin/skills.
func (h *Handler) ListAdminSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.store.ListSkills(r.Context(), store.SkillFilter{})
	if err != nil {
		h.WriteInternalError(w, r, "Failed to retrieve skills", err)
		return
	}
	WriteSuccess(w, nonNil(skills))
}

// GetSkill handles GET /api/admin/skills/{id}.
func (h *Handler) GetSkill(w http.ResponseWriter, r *http.Request) {
	skill, ok := requireEntityByID(h, w, r, "skill", h.store.GetSkill)
	if !ok {
		return
	}
	WriteSuccess(w, skill)
}

// CreateSkill handles POST /api/admin/skills.
func (h *Handler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var req SkillRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.validate(true); len(errs) > 0 {
		WriteValidationError(w, "Validation failed", errs)
		return
	}

	skill, err := h.store.CreateSkill(r.Context(), model.NewSkill{
		Name:     *req.Name,
		Category: *req.Category,
		Level:    deref(req.Level),
		IconName: deref(req.IconName),
	})
	if err != nil {
		h.WriteInternalError(w, r, "Failed to create skill", err)
		return
	}

	h.invalidate(r.Context(), cache.PrefixSkills)
	h.logger.InfoContext(r.Context(), "skill created", "id", skill.ID, "name", skill.Name)
	WriteCreated(w, skill)
}

// UpdateSkill handles PUT /api/admin/skills/{id}.
func (h *Handler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid skill ID", nil)
		return
	}

	var req SkillRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.validate(false); len(errs) > 0 {
		WriteValidationError(w, "Validation failed", errs)
		return
	}

	skill, err := h.store.UpdateSkill(r.Context(), id, model.SkillPatch{
		Name:     req.Name,
		Category: req.Category,
		Level:    req.Level,
		IconName: req.IconName,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Skill not found")
			return
		}
		h.WriteInternalError(w, r, "Failed to update skill", err)
		return
	}

	h.invalidate(r.Context(), cache.PrefixSkills)
	h.logger.InfoContext(r.Context(), "skill updated", "id", skill.ID)
	WriteSuccess(w, skill)
}

// DeleteSkill handles DELETE /api/admin/skills/{id}.
func (h *Handler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	if h.deleteEntityByID(w, r, "skill", h.store.DeleteSkill) {
		h.invalidate(r.Context(), cache.PrefixSkills)
	}
}

// ---- Blogs ----

// BlogRequest is the body of blog writes. On create an empty slug is
// derived from the title and an empty excerpt from the content.
type BlogRequest struct {
	Title      *string `json:"title"`
	Slug       *string `json:"slug"`
	Content    *string `json:"content"`
	Excerpt    *string `json:"excerpt"`
	Tags       *string `json:"tags"`
	CoverImage *string `json:"coverImage"`
	Published  *bool   `json:"published"`
}

func (req *BlogRequest) validate(create bool) fieldErrors {
	trimPtr(req.Title, req.Slug, req.Excerpt, req.Tags, req.CoverImage)

	if create && deref(req.Slug) == "" && deref(req.Title) != "" {
		slug := util.Slugify(*req.Title)
		req.Slug = &slug
	}
	if create && deref(req.Excerpt) == "" && deref(req.Content) != "" {
		excerpt := content.Excerpt(*req.Content, content.DefaultExcerptLength)
		req.Excerpt = &excerpt
	}
	if req.Tags != nil {
		tags := strings.Join(model.SplitTags(*req.Tags), ",")
		req.Tags = &tags
	}

	errs := fieldErrors{}
	if create || req.Title != nil {
		if errs.required("title", deref(req.Title), "Title") {
			errs.maxLength("title", *req.Title, maxTitleLength, "Title")
		}
	}
	if create || req.Slug != nil {
		errs.slug("slug", deref(req.Slug))
	}
	if create || req.Content != nil {
		errs.required("content", deref(req.Content), "Content")
	}
	errs.maxLength("excerpt", deref(req.Excerpt), 2*content.DefaultExcerptLength, "Excerpt")
	errs.link("coverImage", deref(req.CoverImage))
	return errs
}

// ListAdminBlogs handles GET /api/admin/blogs. Drafts are included.
func (h *Handler) ListAdminBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.store.ListBlogs(r.Context(), store.BlogFilter{})
	if err != nil {
		h.WriteInternalError(w, r, "Failed to retrieve blogs", err)
		return
	}
	WriteSuccess(w, nonNil(blogs))
}

// GetBlog handles GET /api/admin/blogs/{id}.
func (h *Handler) GetBlog(w http.ResponseWriter, r *http.Request) {
	blog, ok := requireEntityByID(h, w, r, "blog", h.store.GetBlog)
	if !ok {
		return
	}
	WriteSuccess(w, blog)
}

// CreateBlog handles POST /api/admin/blogs.
func (h *Handler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	var req BlogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.validate(true); len(errs) > 0 {
		WriteValidationError(w, "Validation failed", errs)
		return
	}

	blog, err := h.store.CreateBlog(r.Context(), model.NewBlog{
		Title:      *req.Title,
		Slug:       *req.Slug,
		Content:    *req.Content,
		Excerpt:    deref(req.Excerpt),
		Tags:       deref(req.Tags),
		CoverImage: deref(req.CoverImage),
		Published:  deref(req.Published),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateSlug) {
			WriteValidationError(w, "Validation failed", map[string]string{"slug": "Slug already exists"})
			return
		}
		h.WriteInternalError(w, r, "Failed to create blog post", err)
		return
	}

	h.invalidate(r.Context(), cache.PrefixBlogs)
	h.logger.InfoContext(r.Context(), "blog post created", "id", blog.ID, "slug", blog.Slug)
	WriteCreated(w, blog)
}

// UpdateBlog handles PUT /api/admin/blogs/{id}.
func (h *Handler) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid blog ID", nil)
		return
	}

	var req BlogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.validate(false); len(errs) > 0 {
		WriteValidationError(w, "Validation failed", errs)
		return
	}

	blog, err := h.store.UpdateBlog(r.Context(), id, model.BlogPatch{
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Tags:       req.Tags,
		CoverImage: req.CoverImage,
		Published:  req.Published,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			WriteNotFound(w, "Blog not found")
		case errors.Is(err, store.ErrDuplicateSlug):
			WriteValidationError(w, "Validation failed", map[string]string{"slug": "Slug already exists"})
		default:
			h.WriteInternalError(w, r, "Failed to update blog post", err)
		}
		return
	}

	h.invalidate(r.Context(), cache.PrefixBlogs)
	h.logger.InfoContext(r.Context(), "blog post updated", "id", blog.ID)
	WriteSuccess(w, blog)
}

// DeleteBlog handles DELETE /api/admin/blogs/{id}.
func (h *Handler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	if h.deleteEntityByID(w, r, "blog", h.store.DeleteBlog) {
		h.invalidate(r.Context(), cache.PrefixBlogs)
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func trimPtr(values ...*string) {
	for _, v := range values {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
}
