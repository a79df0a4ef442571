// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/transfer"
)

// maxImportBytes caps import documents.
const maxImportBytes = 10 << 20

// Export streams a content backup as a download. ?messages=true adds
// contact messages; ?media=true returns a zip with the uploads.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	opts := transfer.DefaultExportOptions()
	opts.IncludeMessages = queryBool(r, "messages")
	opts.IncludeMediaFiles = queryBool(r, "media")

	stamp := time.Now().UTC().Format("20060102-150405")

	if opts.IncludeMediaFiles {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="folio-export-%s.zip"`, stamp))
		if err := h.exporter.ExportWithMedia(r.Context(), opts, w); err != nil {
			// Headers are already sent; the client sees a truncated archive.
			h.logger.ErrorContext(r.Context(), "export failed", "error", err)
		}
		return
	}

	data, err := h.exporter.Export(r.Context(), opts)
	if err != nil {
		h.WriteInternalError(w, r, "Failed to export content", err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="folio-export-%s.json"`, stamp))
	WriteJSON(w, http.StatusOK, data)
}

// Import restores an export document. ?dryRun=true only counts, and
// ?conflict=overwrite replaces matching records instead of skipping them.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	opts := transfer.ImportOptions{
		DryRun:           queryBool(r, "dryRun"),
		ConflictStrategy: transfer.ConflictSkip,
	}
	switch c := r.URL.Query().Get("conflict"); c {
	case "", string(transfer.ConflictSkip):
	case string(transfer.ConflictOverwrite):
		opts.ConflictStrategy = transfer.ConflictOverwrite
	default:
		WriteBadRequest(w, "Invalid conflict strategy", map[string]string{"conflict": "Must be skip or overwrite"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	data, err := transfer.ReadExport(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteAPIError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Import document too large", nil)
			return
		}
		WriteBadRequest(w, "Invalid import document", nil)
		return
	}

	result, err := h.importer.Import(r.Context(), data, opts)
	switch {
	case errors.Is(err, transfer.ErrValidation):
		WriteJSON(w, http.StatusBadRequest, result)
		return
	case err != nil:
		h.WriteInternalError(w, r, "Failed to import content", err)
		return
	}

	if !opts.DryRun {
		h.invalidate(r.Context(), cache.PrefixProjects, cache.PrefixSkills, cache.PrefixBlogs)
	}
	h.logger.InfoContext(r.Context(), "import finished", "dry_run", opts.DryRun, "errors", len(result.Errors))
	WriteJSON(w, http.StatusOK, result)
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}
