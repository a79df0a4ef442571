// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_Default(t *testing.T) {
	ts := setupTest(t)

	data, err := newTestExporter(ts).Export(ts.Ctx, DefaultExportOptions())
	require.NoError(t, err)

	assert.Equal(t, ExportVersion, data.Version)
	assert.Equal(t, ts.Now, data.ExportedAt)
	require.Len(t, data.Projects, 1)
	assert.Equal(t, []string{"Go", "SQLite"}, data.Projects[0].Technologies)
	require.Len(t, data.Skills, 1)
	require.Len(t, data.Blogs, 1)
	assert.Equal(t, []string{"go", "web"}, data.Blogs[0].Tags)
	assert.Empty(t, data.Messages, "messages are excluded by default")
}

func TestExport_Selective(t *testing.T) {
	ts := setupTest(t)

	data, err := newTestExporter(ts).Export(ts.Ctx, ExportOptions{IncludeMessages: true, SiteURL: "https://folio.example"})
	require.NoError(t, err)

	assert.Empty(t, data.Projects)
	assert.Empty(t, data.Skills)
	assert.Empty(t, data.Blogs)
	require.Len(t, data.Messages, 1)
	assert.Equal(t, "jane@example.com", data.Messages[0].Email)
	assert.Equal(t, "https://folio.example", data.Site.URL)
}

func TestExportToWriter(t *testing.T) {
	ts := setupTest(t)

	var buf bytes.Buffer
	require.NoError(t, newTestExporter(ts).ExportToWriter(ts.Ctx, DefaultExportOptions(), &buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "1.0", decoded["version"])
	assert.Contains(t, decoded, "projects")
	assert.NotContains(t, decoded, "messages")
}

func TestExportWithMedia(t *testing.T) {
	ts := setupTest(t)
	uploads := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(uploads, "originals", "abc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "originals", "abc", "cover.png"), []byte("png"), 0o644))

	e := newTestExporter(ts)
	e.SetUploadDir(uploads)

	opts := DefaultExportOptions()
	opts.IncludeMediaFiles = true

	var buf bytes.Buffer
	require.NoError(t, e.ExportWithMedia(ts.Ctx, opts, &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	files := make(map[string]*zip.File)
	for _, f := range zr.File {
		files[f.Name] = f
	}
	require.Contains(t, files, ExportFileName)
	require.Contains(t, files, "media/originals/abc/cover.png")

	rc, err := files["media/originals/abc/cover.png"].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	_ = rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "png", string(content))
}

func TestExportWithMedia_MissingUploadDir(t *testing.T) {
	ts := setupTest(t)
	e := newTestExporter(ts)
	e.SetUploadDir(filepath.Join(t.TempDir(), "missing"))

	opts := DefaultExportOptions()
	opts.IncludeMediaFiles = true

	var buf bytes.Buffer
	require.NoError(t, e.ExportWithMedia(ts.Ctx, opts, &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, ExportFileName, zr.File[0].Name)
}
