// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides persistence for users, messages, blogs, projects
// and skills behind a single Store interface, with an in-process map
// backend and a relational backend (SQLite, PostgreSQL, MySQL).
package store

import (
	"context"
	"errors"

	"github.com/olegiv/folio-go/internal/model"
)

// Sentinel errors returned by every backend.
var (
	ErrNotFound          = errors.New("store: record not found")
	ErrDuplicateSlug     = errors.New("store: slug already in use")
	ErrDuplicateUsername = errors.New("store: username already in use")
)

// BlogFilter narrows ListBlogs.
type BlogFilter struct {
	PublishedOnly bool
}

// ProjectFilter narrows ListProjects.
type ProjectFilter struct {
	FeaturedOnly bool
}

// SkillFilter narrows ListSkills. An empty Category returns all skills.
type SkillFilter struct {
	Category string
}

// UserStore persists operator accounts.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, in model.NewUser) (*model.User, error)
}

// MessageStore persists contact messages, newest first.
type MessageStore interface {
	ListMessages(ctx context.Context) ([]model.Message, error)
	GetMessage(ctx context.Context, id int64) (*model.Message, error)
	CreateMessage(ctx context.Context, in model.NewMessage) (*model.Message, error)
	DeleteMessage(ctx context.Context, id int64) (bool, error)
}

// BlogStore persists blog posts, newest first.
type BlogStore interface {
	ListBlogs(ctx context.Context, f BlogFilter) ([]model.Blog, error)
	GetBlog(ctx context.Context, id int64) (*model.Blog, error)
	GetBlogBySlug(ctx context.Context, slug string) (*model.Blog, error)
	CreateBlog(ctx context.Context, in model.NewBlog) (*model.Blog, error)
	UpdateBlog(ctx context.Context, id int64, p model.BlogPatch) (*model.Blog, error)
	DeleteBlog(ctx context.Context, id int64) (bool, error)
}

// ProjectStore persists projects ordered by Order ascending, newest id first on ties.
type ProjectStore interface {
	ListProjects(ctx context.Context, f ProjectFilter) ([]model.Project, error)
	GetProject(ctx context.Context, id int64) (*model.Project, error)
	CreateProject(ctx context.Context, in model.NewProject) (*model.Project, error)
	UpdateProject(ctx context.Context, id int64, p model.ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, id int64) (bool, error)
}

// SkillStore persists skills ordered by category, then level descending.
type SkillStore interface {
	ListSkills(ctx context.Context, f SkillFilter) ([]model.Skill, error)
	GetSkill(ctx context.Context, id int64) (*model.Skill, error)
	CreateSkill(ctx context.Context, in model.NewSkill) (*model.Skill, error)
	UpdateSkill(ctx context.Context, id int64, p model.SkillPatch) (*model.Skill, error)
	DeleteSkill(ctx context.Context, id int64) (bool, error)
}

// Store is the full persistence surface used by the HTTP layer.
//
// Get and Update return ErrNotFound for a missing id. Delete reports
// whether a record was removed and returns (false, nil) for a missing id.
type Store interface {
	UserStore
	MessageStore
	BlogStore
	ProjectStore
	SkillStore

	Ping(ctx context.Context) error
	Close() error
}
