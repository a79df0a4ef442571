// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
)

// ExportFileName is the JSON document inside a media archive.
const ExportFileName = "export.json"

// mediaDir is the archive folder mirroring the uploads directory.
const mediaDir = "media"

// Exporter handles exporting portfolio content.
type Exporter struct {
	store     store.Store
	logger    *slog.Logger
	uploadDir string
	now       func() time.Time
}

// NewExporter creates a new Exporter instance.
func NewExporter(st store.Store, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		store:     st,
		logger:    logger,
		uploadDir: "./uploads",
		now:       time.Now,
	}
}

// SetUploadDir sets the upload directory for media files.
func (e *Exporter) SetUploadDir(dir string) {
	e.uploadDir = dir
}

// Export generates an ExportData structure based on the provided options.
func (e *Exporter) Export(ctx context.Context, opts ExportOptions) (*ExportData, error) {
	data := &ExportData{
		Version:    ExportVersion,
		ExportedAt: e.now().UTC(),
		Site:       ExportSite{URL: opts.SiteURL},
	}

	if opts.IncludeProjects {
		projects, err := e.store.ListProjects(ctx, store.ProjectFilter{})
		if err != nil {
			return nil, fmt.Errorf("exporting projects: %w", err)
		}
		for _, p := range projects {
			data.Projects = append(data.Projects, exportProject(p))
		}
	}

	if opts.IncludeSkills {
		skills, err := e.store.ListSkills(ctx, store.SkillFilter{})
		if err != nil {
			return nil, fmt.Errorf("exporting skills: %w", err)
		}
		for _, s := range skills {
			data.Skills = append(data.Skills, ExportSkill{
				Name:     s.Name,
				Category: s.Category,
				Level:    s.Level,
				IconName: s.IconName,
			})
		}
	}

	if opts.IncludeBlogs {
		blogs, err := e.store.ListBlogs(ctx, store.BlogFilter{})
		if err != nil {
			return nil, fmt.Errorf("exporting blogs: %w", err)
		}
		for _, b := range blogs {
			data.Blogs = append(data.Blogs, exportBlog(b))
		}
	}

	if opts.IncludeMessages {
		messages, err := e.store.ListMessages(ctx)
		if err != nil {
			return nil, fmt.Errorf("exporting messages: %w", err)
		}
		for _, m := range messages {
			data.Messages = append(data.Messages, ExportMessage{
				Name:      m.Name,
				Email:     m.Email,
				Subject:   m.Subject,
				Message:   m.Message,
				CreatedAt: m.CreatedAt,
			})
		}
	}

	e.logger.InfoContext(ctx, "content exported",
		"projects", len(data.Projects),
		"skills", len(data.Skills),
		"blogs", len(data.Blogs),
		"messages", len(data.Messages),
	)
	return data, nil
}

func exportProject(p model.Project) ExportProject {
	return ExportProject{
		Title:        p.Title,
		Description:  p.Description,
		Technologies: slices.Clone(p.Technologies),
		ImageURL:     p.ImageURL,
		DemoURL:      p.DemoURL,
		RepoURL:      p.RepoURL,
		Featured:     p.Featured,
		Order:        p.Order,
	}
}

func exportBlog(b model.Blog) ExportBlog {
	return ExportBlog{
		Title:      b.Title,
		Slug:       b.Slug,
		Content:    b.Content,
		Excerpt:    b.Excerpt,
		Tags:       b.TagList(),
		CoverImage: b.CoverImage,
		Published:  b.Published,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// ExportToWriter writes the export as JSON to the provided writer.
func (e *Exporter) ExportToWriter(ctx context.Context, opts ExportOptions, w io.Writer) error {
	data, err := e.Export(ctx, opts)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportWithMedia creates a zip archive containing export.json and, when
// requested, every file below the upload directory under media/.
func (e *Exporter) ExportWithMedia(ctx context.Context, opts ExportOptions, w io.Writer) error {
	data, err := e.Export(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to generate export: %w", err)
	}

	zipWriter := zip.NewWriter(w)

	if opts.IncludeMediaFiles {
		if err := e.addUploadsToZip(ctx, zipWriter); err != nil {
			_ = zipWriter.Close()
			return err
		}
	}

	jsonWriter, err := zipWriter.Create(ExportFileName)
	if err != nil {
		_ = zipWriter.Close()
		return fmt.Errorf("failed to create %s in zip: %w", ExportFileName, err)
	}

	encoder := json.NewEncoder(jsonWriter)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		_ = zipWriter.Close()
		return fmt.Errorf("failed to write %s: %w", ExportFileName, err)
	}

	return zipWriter.Close()
}

// addUploadsToZip walks the upload directory. Unreadable files are logged
// and skipped.
func (e *Exporter) addUploadsToZip(ctx context.Context, zipWriter *zip.Writer) error {
	root := e.uploadDir
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		zipPath := path.Join(mediaDir, filepath.ToSlash(rel))
		if err := addFileToZip(zipWriter, p, zipPath); err != nil {
			e.logger.WarnContext(ctx, "failed to add upload to zip", "path", rel, "error", err)
		}
		return nil
	})
}

// addFileToZip adds a single file to the zip archive.
func addFileToZip(zipWriter *zip.Writer, srcPath, zipPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcPath, err)
	}
	defer func() { _ = srcFile.Close() }()

	info, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = zipPath
	header.Method = zip.Deflate

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create zip entry: %w", err)
	}

	if _, err := io.Copy(writer, srcFile); err != nil {
		return fmt.Errorf("failed to write file content: %w", err)
	}

	return nil
}
