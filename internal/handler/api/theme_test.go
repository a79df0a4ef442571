// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio-go/internal/theme"
)

func TestTheme_SetAndGet(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/theme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, theme.System, decodeJSONBody[ThemeResponse](t, w).Appearance)

	for range 2 {
		w = env.do(http.MethodPost, "/api/theme", ThemeRequest{Appearance: theme.Dark})
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeJSONBody[StatusResponse](t, w).Success)
	}

	stored, err := env.themes.Get()
	require.NoError(t, err)
	assert.Equal(t, theme.Dark, stored)

	w = env.do(http.MethodGet, "/api/theme", nil)
	assert.Equal(t, theme.Dark, decodeJSONBody[ThemeResponse](t, w).Appearance)
}

func TestTheme_RejectsUnknownAppearance(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/theme", ThemeRequest{Appearance: "sepia"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSONBody[errorEnvelope](t, w).Error.Details, "appearance")

	stored, err := env.themes.Get()
	require.NoError(t, err)
	assert.Equal(t, theme.System, stored)
}

func TestTheme_FileErrorStillSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.handler.themes = theme.NewFileStore("/nonexistent-dir/theme.json")

	w := env.do(http.MethodPost, "/api/theme", ThemeRequest{Appearance: theme.Light})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeJSONBody[StatusResponse](t, w).Success)
}
