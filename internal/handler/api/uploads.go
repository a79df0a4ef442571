// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/olegiv/folio-go/internal/imaging"
	"github.com/olegiv/folio-go/internal/middleware"
)

// multipartOverhead allows for form boundaries around the file part.
const multipartOverhead = 1 << 20

// Upload handles POST /api/admin/uploads with a multipart "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		WriteNotFound(w, "Uploads are not enabled")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.DefaultMaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(imaging.DefaultMaxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteAPIError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "File is too large", nil)
			return
		}
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteValidationError(w, "Validation failed", map[string]string{"file": "File is required"})
		return
	}
	defer func() { _ = file.Close() }()

	upload, err := h.images.Process(file, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrUnsupportedFormat):
			WriteValidationError(w, "Validation failed", map[string]string{"file": "Only JPEG, PNG, GIF and WebP images are supported"})
		case errors.Is(err, imaging.ErrTooLarge):
			middleware.WriteAPIError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "File is too large", nil)
		default:
			h.WriteInternalError(w, r, "Failed to process upload", err)
		}
		return
	}

	h.logger.InfoContext(r.Context(), "image uploaded", "id", upload.ID, "size", upload.Size, "mime_type", upload.MimeType)
	WriteCreated(w, upload)
}

// DeleteUpload handles DELETE /api/admin/uploads/{uploadID}.
func (h *Handler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		WriteNotFound(w, "Uploads are not enabled")
		return
	}

	id := chi.URLParam(r, "uploadID")
	if _, err := uuid.Parse(id); err != nil {
		WriteBadRequest(w, "Invalid upload ID", nil)
		return
	}
	if err := h.images.Delete(id); err != nil {
		h.WriteInternalError(w, r, "Failed to delete upload", err)
		return
	}

	h.logger.InfoContext(r.Context(), "upload deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
