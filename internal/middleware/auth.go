// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// ContextKeyIdentity is the context key for the authenticated identity.
	ContextKeyIdentity ContextKey = "identity"
	// ContextKeyRequestPath is the context key for the current request path.
	ContextKeyRequestPath ContextKey = "request_path"
)

// RequireAdmin admits only requests whose credential resolves to an
// administrator. Missing or invalid credentials get 401, authenticated
// non-admins get 403.
func RequireAdmin(gate auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := gate.Identity(r)
			if err != nil {
				if !auth.IsCredentialError(err) {
					slog.Error("failed to resolve identity", "error", err, "path", r.URL.Path)
					WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
					return
				}
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			if !id.IsAdmin {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", id.UserID,
					"username", id.Username,
					"remote_addr", ClientIP(r),
				)
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Administrator access required", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalIdentity attaches the identity to the context when the request
// carries a valid credential and passes every request through.
func OptionalIdentity(gate auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := gate.Identity(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ContextKeyIdentity, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity retrieves the authenticated identity from the request context.
func GetIdentity(r *http.Request) (model.Identity, bool) {
	id, ok := r.Context().Value(ContextKeyIdentity).(model.Identity)
	return id, ok
}

// RequestPath stores the current request path in the context.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the current request path from the context.
func GetRequestPath(ctx context.Context) string {
	if path, ok := ctx.Value(ContextKeyRequestPath).(string); ok {
		return path
	}
	return ""
}
