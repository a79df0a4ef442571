// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/folio-go/internal/theme"
)

// ThemeRequest is the body of POST /api/theme.
type ThemeRequest struct {
	Appearance string `json:"appearance"`
}

// ThemeResponse reports the stored appearance.
type ThemeResponse struct {
	Appearance string `json:"appearance"`
}

// GetTheme handles GET /api/theme.
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	appearance := theme.System
	if h.themes != nil {
		stored, err := h.themes.Get()
		if err != nil {
			h.logger.WarnContext(r.Context(), "failed to read theme preference", "error", err)
		} else {
			appearance = stored
		}
	}
	WriteSuccess(w, ThemeResponse{Appearance: appearance})
}

// SetTheme handles POST /api/theme. File errors are logged and the
// request still succeeds.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !theme.Valid(req.Appearance) {
		WriteValidationError(w, "Invalid theme", map[string]string{"appearance": theme.ErrInvalidAppearance.Error()})
		return
	}

	if h.themes != nil {
		written, err := h.themes.Set(req.Appearance)
		switch {
		case err != nil:
			h.logger.ErrorContext(r.Context(), "failed to store theme preference", "error", err)
		case written:
			h.logger.InfoContext(r.Context(), "theme updated", "appearance", req.Appearance)
		default:
			h.logger.DebugContext(r.Context(), "theme unchanged, skipping write", "appearance", req.Appearance)
		}
	}

	WriteSuccess(w, StatusResponse{Success: true, Message: "Theme updated successfully"})
}
