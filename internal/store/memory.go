// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/olegiv/folio-go/internal/model"
)

// MemoryStore keeps every entity in process memory. Data is lost on restart.
// It is safe for concurrent use; returned values are copies.
type MemoryStore struct {
	mu sync.RWMutex

	users    map[int64]model.User
	messages map[int64]model.Message
	blogs    map[int64]model.Blog
	projects map[int64]model.Project
	skills   map[int64]model.Skill

	nextUserID    int64
	nextMessageID int64
	nextBlogID    int64
	nextProjectID int64
	nextSkillID   int64

	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{now: func() time.Time { return time.Now().UTC() }}
	s.reset()
	return s
}

// Reset discards all data and restarts id sequences.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *MemoryStore) reset() {
	s.users = make(map[int64]model.User)
	s.messages = make(map[int64]model.Message)
	s.blogs = make(map[int64]model.Blog)
	s.projects = make(map[int64]model.Project)
	s.skills = make(map[int64]model.Skill)
	s.nextUserID, s.nextMessageID, s.nextBlogID, s.nextProjectID, s.nextSkillID = 1, 1, 1, 1, 1
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Users

func (s *MemoryStore) GetUser(_ context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(_ context.Context, in model.NewUser) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == in.Username {
			return nil, ErrDuplicateUsername
		}
	}
	u := model.User{
		ID:           s.nextUserID,
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    s.now(),
	}
	s.nextUserID++
	s.users[u.ID] = u
	return &u, nil
}

// Messages

func (s *MemoryStore) ListMessages(context.Context) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b model.Message) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out, nil
}

func (s *MemoryStore) GetMessage(_ context.Context, id int64) (*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) CreateMessage(_ context.Context, in model.NewMessage) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := model.Message{
		ID:        s.nextMessageID,
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: s.now(),
	}
	s.nextMessageID++
	s.messages[m.ID] = m
	return &m, nil
}

func (s *MemoryStore) DeleteMessage(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.messages[id]
	delete(s.messages, id)
	return ok, nil
}

// Blogs

func (s *MemoryStore) ListBlogs(_ context.Context, f BlogFilter) ([]model.Blog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Blog, 0, len(s.blogs))
	for _, b := range s.blogs {
		if f.PublishedOnly && !b.Published {
			continue
		}
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b model.Blog) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return out, nil
}

func (s *MemoryStore) GetBlog(_ context.Context, id int64) (*model.Blog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) GetBlogBySlug(_ context.Context, slug string) (*model.Blog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.blogs {
		if b.Slug == slug {
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateBlog(_ context.Context, in model.NewBlog) (*model.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slugTaken(in.Slug, 0) {
		return nil, ErrDuplicateSlug
	}
	created := in.CreatedAt.UTC()
	if in.CreatedAt.IsZero() {
		created = s.now()
	}
	b := model.Blog{
		ID:         s.nextBlogID,
		Title:      in.Title,
		Slug:       in.Slug,
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		Tags:       in.Tags,
		CoverImage: in.CoverImage,
		Published:  in.Published,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	s.nextBlogID++
	s.blogs[b.ID] = b
	return &b, nil
}

func (s *MemoryStore) UpdateBlog(_ context.Context, id int64, p model.BlogPatch) (*model.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Slug != nil && s.slugTaken(*p.Slug, id) {
		return nil, ErrDuplicateSlug
	}
	p.Apply(&b)
	b.UpdatedAt = s.now()
	s.blogs[id] = b
	return &b, nil
}

func (s *MemoryStore) DeleteBlog(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blogs[id]
	delete(s.blogs, id)
	return ok, nil
}

func (s *MemoryStore) slugTaken(slug string, excludeID int64) bool {
	for _, b := range s.blogs {
		if b.Slug == slug && b.ID != excludeID {
			return true
		}
	}
	return false
}

// Projects

func (s *MemoryStore) ListProjects(_ context.Context, f ProjectFilter) ([]model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if f.FeaturedOnly && !p.Featured {
			continue
		}
		out = append(out, cloneProject(p))
	}
	slices.SortFunc(out, func(a, b model.Project) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(b.ID, a.ID))
	})
	return out, nil
}

func (s *MemoryStore) GetProject(_ context.Context, id int64) (*model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = cloneProject(p)
	return &p, nil
}

func (s *MemoryStore) CreateProject(_ context.Context, in model.NewProject) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Project{
		ID:           s.nextProjectID,
		Title:        in.Title,
		Description:  in.Description,
		Technologies: slices.Clone(in.Technologies),
		ImageURL:     in.ImageURL,
		DemoURL:      in.DemoURL,
		RepoURL:      in.RepoURL,
		Featured:     in.Featured,
		Order:        in.Order,
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	s.nextProjectID++
	s.projects[p.ID] = p
	out := cloneProject(p)
	return &out, nil
}

func (s *MemoryStore) UpdateProject(_ context.Context, id int64, patch model.ProjectPatch) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = cloneProject(p)
	patch.Apply(&p)
	s.projects[id] = p
	out := cloneProject(p)
	return &out, nil
}

func (s *MemoryStore) DeleteProject(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.projects[id]
	delete(s.projects, id)
	return ok, nil
}

func cloneProject(p model.Project) model.Project {
	p.Technologies = slices.Clone(p.Technologies)
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	return p
}

// Skills

func (s *MemoryStore) ListSkills(_ context.Context, f SkillFilter) ([]model.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Skill, 0, len(s.skills))
	for _, sk := range s.skills {
		if f.Category != "" && sk.Category != f.Category {
			continue
		}
		out = append(out, sk)
	}
	slices.SortFunc(out, func(a, b model.Skill) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(b.Level, a.Level),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out, nil
}

func (s *MemoryStore) GetSkill(_ context.Context, id int64) (*model.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sk, ok := s.skills[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sk, nil
}

func (s *MemoryStore) CreateSkill(_ context.Context, in model.NewSkill) (*model.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk := model.Skill{
		ID:       s.nextSkillID,
		Name:     in.Name,
		Category: in.Category,
		Level:    in.Level,
		IconName: in.IconName,
	}
	s.nextSkillID++
	s.skills[sk.ID] = sk
	return &sk, nil
}

func (s *MemoryStore) UpdateSkill(_ context.Context, id int64, p model.SkillPatch) (*model.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk, ok := s.skills[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Apply(&sk)
	s.skills[id] = sk
	return &sk, nil
}

func (s *MemoryStore) DeleteSkill(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.skills[id]
	delete(s.skills, id)
	return ok, nil
}

// newestFirst orders by creation time descending, then id descending.
func newestFirst(a, b time.Time, aID, bID int64) int {
	return cmp.Or(b.Compare(a), cmp.Compare(bID, aID))
}
