// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/model"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Success bool           `json:"success"`
	User    model.Identity `json:"user"`
}

// SessionResponse describes the caller's authentication state.
type SessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *model.Identity `json:"user,omitempty"`
}

// Login handles POST /api/login. Only empty fields are rejected with 400;
// every other failure is the same 401 "Invalid credentials".
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	errs := fieldErrors{}
	errs.required("username", req.Username, "Username")
	errs.required("password", req.Password, "Password")
	if len(errs) > 0 {
		WriteValidationError(w, "Invalid login data", errs)
		return
	}

	user, err := h.authn.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.WarnContext(r.Context(), "failed login attempt",
				"username", req.Username,
				"remote_addr", middleware.ClientIP(r),
			)
			WriteUnauthorized(w, "Invalid credentials")
			return
		}
		h.WriteInternalError(w, r, "Login failed", err)
		return
	}

	id := user.Identity()
	if err := h.gate.Login(w, r, id); err != nil {
		h.WriteInternalError(w, r, "Login failed", err)
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in", "user_id", id.UserID, "username", id.Username)
	WriteSuccess(w, LoginResponse{Success: true, User: id})
}

// Logout handles POST /api/logout. It succeeds without a credential.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Logout(w, r); err != nil {
		h.WriteInternalError(w, r, "Logout failed", err)
		return
	}
	WriteSuccess(w, StatusResponse{Success: true, Message: "Logged out"})
}

// Session handles GET /api/session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	id, err := h.gate.Identity(r)
	if err != nil {
		if !auth.IsCredentialError(err) {
			h.WriteInternalError(w, r, "Failed to read session", err)
			return
		}
		WriteSuccess(w, SessionResponse{Authenticated: false})
		return
	}
	WriteSuccess(w, SessionResponse{Authenticated: true, User: &id})
}
