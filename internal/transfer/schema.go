// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer exports portfolio content to a portable JSON document
// (optionally zipped with the uploads) and imports it back.
package transfer

import (
	"strings"
	"time"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// ExportData represents the complete export structure.
type ExportData struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Site       ExportSite      `json:"site"`
	Projects   []ExportProject `json:"projects,omitempty"`
	Skills     []ExportSkill   `json:"skills,omitempty"`
	Blogs      []ExportBlog    `json:"blogs,omitempty"`
	Messages   []ExportMessage `json:"messages,omitempty"`
}

// ExportSite contains basic site information.
type ExportSite struct {
	URL string `json:"url,omitempty"`
}

// ExportProject is a project. Projects are matched on title during import.
type ExportProject struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	DemoURL      string   `json:"demo_url,omitempty"`
	RepoURL      string   `json:"repo_url,omitempty"`
	Featured     bool     `json:"featured"`
	Order        int      `json:"order"`
}

// ExportSkill is a skill. Skills are matched on name and category.
type ExportSkill struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    int    `json:"level"`
	IconName string `json:"icon_name,omitempty"`
}

// ExportBlog is a blog post. Posts are matched on slug.
type ExportBlog struct {
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Excerpt    string    `json:"excerpt,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CoverImage string    `json:"cover_image,omitempty"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ExportMessage is a contact message. Messages are exported for backup only.
type ExportMessage struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportOptions configures what to include in the export.
type ExportOptions struct {
	IncludeProjects   bool `json:"include_projects"`
	IncludeSkills     bool `json:"include_skills"`
	IncludeBlogs      bool `json:"include_blogs"`
	IncludeMessages   bool `json:"include_messages"`
	IncludeMediaFiles bool `json:"include_media_files"`
	SiteURL           string `json:"site_url,omitempty"`
}

// DefaultExportOptions returns options that include all content.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		IncludeProjects: true,
		IncludeSkills:   true,
		IncludeBlogs:    true,
		IncludeMessages: false, // messages excluded by default for privacy
	}
}

// ConflictStrategy decides what happens to records that already exist.
type ConflictStrategy string

// Conflict strategies.
const (
	ConflictSkip      ConflictStrategy = "skip"
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ImportOptions configures an import.
type ImportOptions struct {
	DryRun           bool             `json:"dry_run"`
	ConflictStrategy ConflictStrategy `json:"conflict_strategy"`
}

// ImportError describes a record that failed validation or import.
type ImportError struct {
	Entity  string `json:"entity"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// ImportResult counts what an import did, or would do in a dry run.
type ImportResult struct {
	DryRun  bool           `json:"dry_run"`
	Created map[string]int `json:"created"`
	Updated map[string]int `json:"updated"`
	Skipped map[string]int `json:"skipped"`
	Errors  []ImportError  `json:"errors"`
}

// NewImportResult creates an empty result.
func NewImportResult(dryRun bool) *ImportResult {
	return &ImportResult{
		DryRun:  dryRun,
		Created: make(map[string]int),
		Updated: make(map[string]int),
		Skipped: make(map[string]int),
		Errors:  []ImportError{},
	}
}

func (r *ImportResult) IncrementCreated(entity string) { r.Created[entity]++ }
func (r *ImportResult) IncrementUpdated(entity string) { r.Updated[entity]++ }
func (r *ImportResult) IncrementSkipped(entity string) { r.Skipped[entity]++ }

// AddError records a failed record.
func (r *ImportResult) AddError(entity, id, message string) {
	r.Errors = append(r.Errors, ImportError{Entity: entity, ID: id, Message: message})
}

// Success reports whether no record failed.
func (r *ImportResult) Success() bool {
	return len(r.Errors) == 0
}

// compatibleVersion accepts any 1.x export.
func compatibleVersion(v string) bool {
	return strings.HasPrefix(v, "1.")
}
