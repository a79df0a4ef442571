// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers for the portfolio site.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/imaging"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/notify"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/transfer"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ContactNotifier is told about stored contact messages.
type ContactNotifier interface {
	RequestMeta(ip, userAgent string) notify.Meta
	MessageCreated(msg model.Message, meta notify.Meta)
	EmailEnabled() bool
	VerifyEmail(ctx context.Context) error
}

// ThemeStore persists the site appearance preference.
type ThemeStore interface {
	Get() (string, error)
	Set(appearance string) (bool, error)
}

// ImageProcessor stores uploaded images.
type ImageProcessor interface {
	Process(r io.Reader, filename string) (*imaging.Upload, error)
	Delete(id string) error
}

// Config holds the dependencies of the API handlers. Notifier, Themes
// and Images are optional.
type Config struct {
	Store         store.Store
	Authenticator *auth.Authenticator
	Gate          auth.Gate
	Cache         cache.Cache
	CacheTTL      time.Duration
	Notifier      ContactNotifier
	Themes        ThemeStore
	Images        ImageProcessor
	EmailHost     string
	// UploadsDir is archived by media exports.
	UploadsDir    string
	Logger        *slog.Logger
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store    store.Store
	authn    *auth.Authenticator
	gate     auth.Gate
	cache    cache.Cache
	cacheTTL time.Duration
	notifier ContactNotifier
	themes   ThemeStore
	images   ImageProcessor
	mailHost string
	exporter *transfer.Exporter
	importer *transfer.Importer
	logger   *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exporter := transfer.NewExporter(cfg.Store, logger)
	if cfg.UploadsDir != "" {
		exporter.SetUploadDir(cfg.UploadsDir)
	}
	return &Handler{
		store:    cfg.Store,
		authn:    cfg.Authenticator,
		gate:     cfg.Gate,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		notifier: cfg.Notifier,
		themes:   cfg.Themes,
		images:   cfg.Images,
		mailHost: cfg.EmailHost,
		exporter: exporter,
		importer: transfer.NewImporter(cfg.Store, logger),
		logger:   logger,
	}
}

// StatusResponse is the body of simple acknowledgements.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 OK JSON response.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	middleware.WriteAPIError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteValidationError writes a 400 response listing the invalid fields.
func WriteValidationError(w http.ResponseWriter, message string, fieldErrors map[string]string) {
	middleware.WriteAPIError(w, http.StatusBadRequest, "validation_error", message, fieldErrors)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	middleware.WriteAPIError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteInternalError writes a 500 response. The cause is logged, never sent.
func (h *Handler) WriteInternalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.logger.ErrorContext(r.Context(), message, "error", err, "method", r.Method)
	middleware.WriteAPIError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// decodeJSON reads a JSON body into dst. It writes a 400 and returns false
// when the body is malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteAPIError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large", nil)
			return false
		}
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// parseIDParam parses the {id} URL parameter as a positive integer.
func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// EntityFetcher fetches an entity by ID.
type EntityFetcher[T any] func(ctx context.Context, id int64) (T, error)

// requireEntityByID parses the ID from the URL and fetches the entity.
// It returns false when a response has already been written.
func requireEntityByID[T any](h *Handler, w http.ResponseWriter, r *http.Request, entityName string, fetch EntityFetcher[T]) (T, bool) {
	var zero T

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return zero, false
	}

	entity, err := fetch(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, capitalizeFirst(entityName)+" not found")
		} else {
			h.WriteInternalError(w, r, "Failed to retrieve "+entityName, err)
		}
		return zero, false
	}

	return entity, true
}

// deleteEntityByID parses the ID and deletes the entity, answering 404
// when nothing was removed.
func (h *Handler) deleteEntityByID(w http.ResponseWriter, r *http.Request, entityName string, del func(ctx context.Context, id int64) (bool, error)) bool {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return false
	}

	deleted, err := del(r.Context(), id)
	if err != nil {
		h.WriteInternalError(w, r, "Failed to delete "+entityName, err)
		return false
	}
	if !deleted {
		WriteNotFound(w, capitalizeFirst(entityName)+" not found")
		return false
	}

	h.logger.InfoContext(r.Context(), entityName+" deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
	return true
}

// cached serves a public read through the cache when one is configured.
func cached[T any](h *Handler, ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if h.cache == nil {
		return load(ctx)
	}
	return cache.GetOrLoad(ctx, h.cache, key, h.cacheTTL, load)
}

// invalidate drops the public cache entries of the touched kinds.
func (h *Handler) invalidate(ctx context.Context, prefixes ...string) {
	if h.cache != nil {
		cache.Invalidate(ctx, h.cache, prefixes...)
	}
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
