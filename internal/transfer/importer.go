// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/util"
)

// ErrValidation is returned by Import when the document fails validation.
// The result lists the offending records.
var ErrValidation = errors.New("transfer: validation failed")

// Entity names used in results.
const (
	EntityProjects = "projects"
	EntitySkills   = "skills"
	EntityBlogs    = "blogs"
)

// Importer handles importing portfolio content. Messages in a document are
// ignored: contact messages only enter through the contact form.
type Importer struct {
	store  store.Store
	logger *slog.Logger
}

// NewImporter creates a new Importer instance.
func NewImporter(st store.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: st, logger: logger}
}

// ReadExport decodes an export document.
func ReadExport(r io.Reader) (*ExportData, error) {
	var data ExportData
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	return &data, nil
}

// Validate checks the document without touching the store.
func (i *Importer) Validate(data *ExportData) []ImportError {
	var errs []ImportError
	add := func(entity, id, msg string) {
		errs = append(errs, ImportError{Entity: entity, ID: id, Message: msg})
	}

	if !compatibleVersion(data.Version) {
		add("document", "", fmt.Sprintf("unsupported export version %q", data.Version))
		return errs
	}

	for idx, p := range data.Projects {
		id := fmt.Sprintf("#%d", idx)
		if strings.TrimSpace(p.Title) == "" {
			add(EntityProjects, id, "title is required")
		}
		if strings.TrimSpace(p.Description) == "" {
			add(EntityProjects, id, "description is required")
		}
	}

	for idx, s := range data.Skills {
		id := fmt.Sprintf("#%d", idx)
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Category) == "" {
			add(EntitySkills, id, "name and category are required")
		}
		if s.Level < model.MinSkillLevel || s.Level > model.MaxSkillLevel {
			add(EntitySkills, id, fmt.Sprintf("level must be between %d and %d", model.MinSkillLevel, model.MaxSkillLevel))
		}
	}

	seen := make(map[string]bool, len(data.Blogs))
	for _, b := range data.Blogs {
		if !util.IsValidSlug(b.Slug) {
			add(EntityBlogs, b.Slug, "invalid slug")
			continue
		}
		if seen[b.Slug] {
			add(EntityBlogs, b.Slug, "duplicate slug in document")
		}
		seen[b.Slug] = true
		if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Content) == "" {
			add(EntityBlogs, b.Slug, "title and content are required")
		}
	}

	return errs
}

// Import validates the document and writes it record by record. A failing
// record is reported in the result and the rest still apply.
func (i *Importer) Import(ctx context.Context, data *ExportData, opts ImportOptions) (*ImportResult, error) {
	if opts.ConflictStrategy == "" {
		opts.ConflictStrategy = ConflictSkip
	}
	result := NewImportResult(opts.DryRun)

	if errs := i.Validate(data); len(errs) > 0 {
		result.Errors = errs
		return result, ErrValidation
	}

	if err := i.importProjects(ctx, data.Projects, opts, result); err != nil {
		return result, err
	}
	if err := i.importSkills(ctx, data.Skills, opts, result); err != nil {
		return result, err
	}
	if err := i.importBlogs(ctx, data.Blogs, opts, result); err != nil {
		return result, err
	}

	i.logger.InfoContext(ctx, "content imported",
		"dry_run", opts.DryRun,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (i *Importer) importProjects(ctx context.Context, items []ExportProject, opts ImportOptions, result *ImportResult) error {
	if len(items) == 0 {
		return nil
	}
	existing, err := i.store.ListProjects(ctx, store.ProjectFilter{})
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	byTitle := make(map[string]int64, len(existing))
	for _, p := range existing {
		byTitle[strings.ToLower(p.Title)] = p.ID
	}

	for _, p := range items {
		id, exists := byTitle[strings.ToLower(p.Title)]
		switch {
		case exists && opts.ConflictStrategy == ConflictSkip:
			result.IncrementSkipped(EntityProjects)
		case exists:
			if !opts.DryRun {
				techs := slices.Clone(p.Technologies)
				if _, err := i.store.UpdateProject(ctx, id, model.ProjectPatch{
					Title: &p.Title, Description: &p.Description, Technologies: &techs,
					ImageURL: &p.ImageURL, DemoURL: &p.DemoURL, RepoURL: &p.RepoURL,
					Featured: &p.Featured, Order: &p.Order,
				}); err != nil {
					result.AddError(EntityProjects, p.Title, err.Error())
					continue
				}
			}
			result.IncrementUpdated(EntityProjects)
		default:
			if !opts.DryRun {
				created, err := i.store.CreateProject(ctx, model.NewProject{
					Title: p.Title, Description: p.Description, Technologies: slices.Clone(p.Technologies),
					ImageURL: p.ImageURL, DemoURL: p.DemoURL, RepoURL: p.RepoURL,
					Featured: p.Featured, Order: p.Order,
				})
				if err != nil {
					result.AddError(EntityProjects, p.Title, err.Error())
					continue
				}
				id = created.ID
			}
			byTitle[strings.ToLower(p.Title)] = id
			result.IncrementCreated(EntityProjects)
		}
	}
	return nil
}

func skillKey(name, category string) string {
	return strings.ToLower(category) + "\x00" + strings.ToLower(name)
}

func (i *Importer) importSkills(ctx context.Context, items []ExportSkill, opts ImportOptions, result *ImportResult) error {
	if len(items) == 0 {
		return nil
	}
	existing, err := i.store.ListSkills(ctx, store.SkillFilter{})
	if err != nil {
		return fmt.Errorf("listing skills: %w", err)
	}
	byKey := make(map[string]int64, len(existing))
	for _, s := range existing {
		byKey[skillKey(s.Name, s.Category)] = s.ID
	}

	for _, s := range items {
		key := skillKey(s.Name, s.Category)
		id, exists := byKey[key]
		switch {
		case exists && opts.ConflictStrategy == ConflictSkip:
			result.IncrementSkipped(EntitySkills)
		case exists:
			if !opts.DryRun {
				if _, err := i.store.UpdateSkill(ctx, id, model.SkillPatch{
					Name: &s.Name, Category: &s.Category, Level: &s.Level, IconName: &s.IconName,
				}); err != nil {
					result.AddError(EntitySkills, s.Name, err.Error())
					continue
				}
			}
			result.IncrementUpdated(EntitySkills)
		default:
			if !opts.DryRun {
				created, err := i.store.CreateSkill(ctx, model.NewSkill{
					Name: s.Name, Category: s.Category, Level: s.Level, IconName: s.IconName,
				})
				if err != nil {
					result.AddError(EntitySkills, s.Name, err.Error())
					continue
				}
				id = created.ID
			}
			byKey[key] = id
			result.IncrementCreated(EntitySkills)
		}
	}
	return nil
}

func (i *Importer) importBlogs(ctx context.Context, items []ExportBlog, opts ImportOptions, result *ImportResult) error {
	for _, b := range items {
		existing, err := i.store.GetBlogBySlug(ctx, b.Slug)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("looking up blog %q: %w", b.Slug, err)
		}
		tags := strings.Join(model.SplitTags(strings.Join(b.Tags, ",")), ",")

		switch {
		case existing != nil && opts.ConflictStrategy == ConflictSkip:
			result.IncrementSkipped(EntityBlogs)
		case existing != nil:
			if !opts.DryRun {
				if _, err := i.store.UpdateBlog(ctx, existing.ID, model.BlogPatch{
					Title: &b.Title, Content: &b.Content, Excerpt: &b.Excerpt, Tags: &tags,
					CoverImage: &b.CoverImage, Published: &b.Published,
				}); err != nil {
					result.AddError(EntityBlogs, b.Slug, err.Error())
					continue
				}
			}
			result.IncrementUpdated(EntityBlogs)
		default:
			if !opts.DryRun {
				if _, err := i.store.CreateBlog(ctx, model.NewBlog{
					Title: b.Title, Slug: b.Slug, Content: b.Content, Excerpt: b.Excerpt, Tags: tags,
					CoverImage: b.CoverImage, Published: b.Published, CreatedAt: b.CreatedAt,
				}); err != nil {
					result.AddError(EntityBlogs, b.Slug, err.Error())
					continue
				}
			}
			result.IncrementCreated(EntityBlogs)
		}
	}
	return nil
}
