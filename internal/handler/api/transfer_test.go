// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"archive/zip"
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/transfer"
)

func TestExport_JSON(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.loginAdmin()

	w := env.do(http.MethodPost, "/api/admin/projects", map[string]any{"title": "Folio", "description": "Backend"}, cookies...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(http.MethodPost, "/api/contact", model.NewMessage{
		Name: "Jane", Email: "jane@example.com", Subject: "Hi", Message: "Hello there, friend",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/admin/export", nil, cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="folio-export-`)

	data := decodeJSONBody[transfer.ExportData](t, w)
	assert.Equal(t, transfer.ExportVersion, data.Version)
	require.Len(t, data.Projects, 1)
	assert.Empty(t, data.Messages)

	w = env.do(http.MethodGet, "/api/admin/export?messages=true", nil, cookies...)
	data = decodeJSONBody[transfer.ExportData](t, w)
	assert.Len(t, data.Messages, 1)
}

func TestExport_MediaArchive(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.uploads, "note.txt"), []byte("x"), 0o644))

	w := env.do(http.MethodGet, "/api/admin/export?media=true", nil, env.loginAdmin()...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"media/note.txt", transfer.ExportFileName}, names)
}

func TestExport_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/admin/export", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/admin/export", nil, env.login(testViewerUser, testAdminPassword)...)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

const importDoc = `{
  "version": "1.0",
  "exported_at": "2025-06-01T12:00:00Z",
  "site": {},
  "projects": [{"title": "Imported", "description": "From backup", "featured": true, "order": 1}],
  "skills": [{"name": "Go", "category": "Backend", "level": 80}],
  "blogs": [{"title": "Old post", "slug": "old-post", "content": "Body", "published": true, "created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z"}]
}`

func TestImport(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.loginAdmin()

	// Warm the public cache so the import has to invalidate it.
	w := env.do(http.MethodGet, "/api/projects", nil)
	require.Equal(t, "[]\n", w.Body.String())

	w = env.do(http.MethodPost, "/api/admin/import?dryRun=true", importDoc, cookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeJSONBody[transfer.ImportResult](t, w)
	assert.True(t, result.DryRun)
	projects, _ := env.store.ListProjects(t.Context(), store.ProjectFilter{})
	assert.Empty(t, projects)

	w = env.do(http.MethodPost, "/api/admin/import", importDoc, cookies...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = decodeJSONBody[transfer.ImportResult](t, w)
	assert.Equal(t, 1, result.Created["blogs"])

	w = env.do(http.MethodGet, "/api/projects", nil)
	assert.Contains(t, w.Body.String(), "Imported")

	w = env.do(http.MethodGet, "/api/blogs/old-post", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Second run skips everything.
	w = env.do(http.MethodPost, "/api/admin/import", importDoc, cookies...)
	result = decodeJSONBody[transfer.ImportResult](t, w)
	assert.Empty(t, result.Created)
	assert.Equal(t, 1, result.Skipped["projects"])
}

func TestImport_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"malformed json", "/api/admin/import", "{", http.StatusBadRequest},
		{"unknown field", "/api/admin/import", `{"version":"1.0","pages":[]}`, http.StatusBadRequest},
		{"bad conflict strategy", "/api/admin/import?conflict=merge", importDoc, http.StatusBadRequest},
		{"validation failure", "/api/admin/import", `{"version":"2.0"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(http.MethodPost, tt.path, tt.body, env.loginAdmin()...)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestImport_ValidationReportsErrors(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/admin/import", `{"version":"1.0","skills":[{"name":"Go","category":"Backend","level":200}]}`, env.loginAdmin()...)
	require.Equal(t, http.StatusBadRequest, w.Code)

	result := decodeJSONBody[transfer.ImportResult](t, w)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "skills", result.Errors[0].Entity)
	assert.True(t, strings.Contains(result.Errors[0].Message, "level"))
}

func TestImport_BlockedInDemoMode(t *testing.T) {
	env := newTestEnv(t, withDemoMode())

	w := env.do(http.MethodPost, "/api/admin/import", importDoc, env.loginAdmin()...)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
