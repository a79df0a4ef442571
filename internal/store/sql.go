// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/folio-go/internal/model"
)

// SQLStore persists entities in a relational database. Queries are written
// with ? placeholders and rebound for PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps an open, migrated database.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// DB returns the underlying connection pool.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Dialect returns the SQL dialect of the connection.
func (s *SQLStore) Dialect() Dialect { return s.dialect }

// Ping verifies the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the connection pool.
func (s *SQLStore) Close() error { return s.db.Close() }

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insert runs an INSERT and returns the generated id.
func (s *SQLStore) insert(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	if s.dialect == DialectPostgres {
		var id int64
		err := q.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := q.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// exec runs a statement and reports whether any row was affected.
func (s *SQLStore) exec(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	res, err := q.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// inTx runs fn in a transaction, committing when fn returns nil.
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Users

const userColumns = "id, username, password_hash, is_admin, created_at"

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (s *SQLStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	return scanUser(row)
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+userColumns+" FROM users WHERE username = ?"), username)
	return scanUser(row)
}

func (s *SQLStore) CreateUser(ctx context.Context, in model.NewUser) (*model.User, error) {
	u := &model.User{
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    s.now(),
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, s.rebind("SELECT 1 FROM users WHERE username = ?"), in.Username).Scan(&exists)
		if err == nil {
			return ErrDuplicateUsername
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		u.ID, err = s.insert(ctx, tx,
			"INSERT INTO users (username, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?)",
			u.Username, u.PasswordHash, u.IsAdmin, u.CreatedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// Messages

const messageColumns = "id, name, email, subject, message, created_at"

func scanMessage(row interface{ Scan(...any) error }) (*model.Message, error) {
	var m model.Message
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

func (s *SQLStore) ListMessages(ctx context.Context) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+messageColumns+" FROM messages ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetMessage(ctx context.Context, id int64) (*model.Message, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+messageColumns+" FROM messages WHERE id = ?"), id)
	return scanMessage(row)
}

func (s *SQLStore) CreateMessage(ctx context.Context, in model.NewMessage) (*model.Message, error) {
	m := &model.Message{
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: s.now(),
	}
	id, err := s.insert(ctx, s.db,
		"INSERT INTO messages (name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?)",
		m.Name, m.Email, m.Subject, m.Message, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	m.ID = id
	return m, nil
}

func (s *SQLStore) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	return s.exec(ctx, s.db, "DELETE FROM messages WHERE id = ?", id)
}

// Blogs

const blogColumns = "id, title, slug, content, excerpt, tags, cover_image, published, created_at, updated_at"

func scanBlog(row interface{ Scan(...any) error }) (*model.Blog, error) {
	var (
		b          model.Blog
		tags, cover sql.NullString
	)
	err := row.Scan(&b.ID, &b.Title, &b.Slug, &b.Content, &b.Excerpt, &tags, &cover,
		&b.Published, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	b.Tags = tags.String
	b.CoverImage = cover.String
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func (s *SQLStore) ListBlogs(ctx context.Context, f BlogFilter) ([]model.Blog, error) {
	query := "SELECT " + blogColumns + " FROM blogs"
	var args []any
	if f.PublishedOnly {
		query += " WHERE published = ?"
		args = append(args, true)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing blogs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.Blog{}
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning blog: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetBlog(ctx context.Context, id int64) (*model.Blog, error) {
	return s.getBlog(ctx, s.db, id)
}

func (s *SQLStore) getBlog(ctx context.Context, q querier, id int64) (*model.Blog, error) {
	row := q.QueryRowContext(ctx, s.rebind("SELECT "+blogColumns+" FROM blogs WHERE id = ?"), id)
	return scanBlog(row)
}

func (s *SQLStore) GetBlogBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+blogColumns+" FROM blogs WHERE slug = ?"), slug)
	return scanBlog(row)
}

func (s *SQLStore) slugTaken(ctx context.Context, q querier, slug string, excludeID int64) (bool, error) {
	var exists int
	err := q.QueryRowContext(ctx, s.rebind("SELECT 1 FROM blogs WHERE slug = ? AND id <> ?"), slug, excludeID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *SQLStore) CreateBlog(ctx context.Context, in model.NewBlog) (*model.Blog, error) {
	created := in.CreatedAt.UTC().Truncate(time.Microsecond)
	if in.CreatedAt.IsZero() {
		created = s.now()
	}
	b := &model.Blog{
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

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		taken, err := s.slugTaken(ctx, tx, b.Slug, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateSlug
		}
		b.ID, err = s.insert(ctx, tx,
			"INSERT INTO blogs (title, slug, content, excerpt, tags, cover_image, published, created_at, updated_at) "+
				"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			b.Title, b.Slug, b.Content, b.Excerpt, nullString(b.Tags), nullString(b.CoverImage),
			b.Published, b.CreatedAt, b.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating blog: %w", err)
	}
	return b, nil
}

func (s *SQLStore) UpdateBlog(ctx context.Context, id int64, p model.BlogPatch) (*model.Blog, error) {
	var b *model.Blog
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if b, err = s.getBlog(ctx, tx, id); err != nil {
			return err
		}
		if p.Slug != nil {
			taken, err := s.slugTaken(ctx, tx, *p.Slug, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateSlug
			}
		}
		p.Apply(b)
		b.UpdatedAt = s.now()
		_, err = s.exec(ctx, tx,
			"UPDATE blogs SET title = ?, slug = ?, content = ?, excerpt = ?, tags = ?, cover_image = ?, "+
				"published = ?, updated_at = ? WHERE id = ?",
			b.Title, b.Slug, b.Content, b.Excerpt, nullString(b.Tags), nullString(b.CoverImage),
			b.Published, b.UpdatedAt, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("updating blog %d: %w", id, err)
	}
	return b, nil
}

func (s *SQLStore) DeleteBlog(ctx context.Context, id int64) (bool, error) {
	return s.exec(ctx, s.db, "DELETE FROM blogs WHERE id = ?", id)
}

// Projects

const projectColumns = "id, title, description, technologies, image_url, demo_url, repo_url, featured, sort_order"

func scanProject(row interface{ Scan(...any) error }) (*model.Project, error) {
	var (
		p                     model.Project
		techs                 string
		image, demo, repoLink sql.NullString
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &techs, &image, &demo, &repoLink, &p.Featured, &p.Order)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal([]byte(techs), &p.Technologies); err != nil {
		return nil, fmt.Errorf("decoding technologies of project %d: %w", p.ID, err)
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	p.ImageURL, p.DemoURL, p.RepoURL = image.String, demo.String, repoLink.String
	return &p, nil
}

func encodeTechnologies(techs []string) (string, error) {
	if techs == nil {
		techs = []string{}
	}
	b, err := json.Marshal(techs)
	return string(b), err
}

func (s *SQLStore) ListProjects(ctx context.Context, f ProjectFilter) ([]model.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects"
	var args []any
	if f.FeaturedOnly {
		query += " WHERE featured = ?"
		args = append(args, true)
	}
	query += " ORDER BY sort_order ASC, id DESC"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	return s.getProject(ctx, s.db, id)
}

func (s *SQLStore) getProject(ctx context.Context, q querier, id int64) (*model.Project, error) {
	row := q.QueryRowContext(ctx, s.rebind("SELECT "+projectColumns+" FROM projects WHERE id = ?"), id)
	return scanProject(row)
}

func (s *SQLStore) CreateProject(ctx context.Context, in model.NewProject) (*model.Project, error) {
	techs, err := encodeTechnologies(in.Technologies)
	if err != nil {
		return nil, fmt.Errorf("encoding technologies: %w", err)
	}
	id, err := s.insert(ctx, s.db,
		"INSERT INTO projects (title, description, technologies, image_url, demo_url, repo_url, featured, sort_order) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		in.Title, in.Description, techs, nullString(in.ImageURL), nullString(in.DemoURL), nullString(in.RepoURL),
		in.Featured, in.Order)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return s.GetProject(ctx, id)
}

func (s *SQLStore) UpdateProject(ctx context.Context, id int64, patch model.ProjectPatch) (*model.Project, error) {
	var p *model.Project
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if p, err = s.getProject(ctx, tx, id); err != nil {
			return err
		}
		patch.Apply(p)
		techs, err := encodeTechnologies(p.Technologies)
		if err != nil {
			return err
		}
		_, err = s.exec(ctx, tx,
			"UPDATE projects SET title = ?, description = ?, technologies = ?, image_url = ?, demo_url = ?, "+
				"repo_url = ?, featured = ?, sort_order = ? WHERE id = ?",
			p.Title, p.Description, techs, nullString(p.ImageURL), nullString(p.DemoURL), nullString(p.RepoURL),
			p.Featured, p.Order, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("updating project %d: %w", id, err)
	}
	return p, nil
}

func (s *SQLStore) DeleteProject(ctx context.Context, id int64) (bool, error) {
	return s.exec(ctx, s.db, "DELETE FROM projects WHERE id = ?", id)
}

// Skills

const skillColumns = "id, name, category, level, icon_name"

func scanSkill(row interface{ Scan(...any) error }) (*model.Skill, error) {
	var (
		sk   model.Skill
		icon sql.NullString
	)
	if err := row.Scan(&sk.ID, &sk.Name, &sk.Category, &sk.Level, &icon); err != nil {
		return nil, notFound(err)
	}
	sk.IconName = icon.String
	return &sk, nil
}

func (s *SQLStore) ListSkills(ctx context.Context, f SkillFilter) ([]model.Skill, error) {
	query := "SELECT " + skillColumns + " FROM skills"
	var args []any
	if f.Category != "" {
		query += " WHERE category = ? ORDER BY level DESC, id ASC"
		args = append(args, f.Category)
	} else {
		query += " ORDER BY category ASC, level DESC, id ASC"
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing skills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.Skill{}
	for rows.Next() {
		sk, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning skill: %w", err)
		}
		out = append(out, *sk)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetSkill(ctx context.Context, id int64) (*model.Skill, error) {
	return s.getSkill(ctx, s.db, id)
}

func (s *SQLStore) getSkill(ctx context.Context, q querier, id int64) (*model.Skill, error) {
	row := q.QueryRowContext(ctx, s.rebind("SELECT "+skillColumns+" FROM skills WHERE id = ?"), id)
	return scanSkill(row)
}

func (s *SQLStore) CreateSkill(ctx context.Context, in model.NewSkill) (*model.Skill, error) {
	id, err := s.insert(ctx, s.db,
		"INSERT INTO skills (name, category, level, icon_name) VALUES (?, ?, ?, ?)",
		in.Name, in.Category, in.Level, nullString(in.IconName))
	if err != nil {
		return nil, fmt.Errorf("creating skill: %w", err)
	}
	return &model.Skill{ID: id, Name: in.Name, Category: in.Category, Level: in.Level, IconName: in.IconName}, nil
}

func (s *SQLStore) UpdateSkill(ctx context.Context, id int64, p model.SkillPatch) (*model.Skill, error) {
	var sk *model.Skill
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if sk, err = s.getSkill(ctx, tx, id); err != nil {
			return err
		}
		p.Apply(sk)
		_, err = s.exec(ctx, tx,
			"UPDATE skills SET name = ?, category = ?, level = ?, icon_name = ? WHERE id = ?",
			sk.Name, sk.Category, sk.Level, nullString(sk.IconName), id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("updating skill %d: %w", id, err)
	}
	return sk, nil
}

func (s *SQLStore) DeleteSkill(ctx context.Context, id int64) (bool, error) {
	return s.exec(ctx, s.db, "DELETE FROM skills WHERE id = ?", id)
}
