// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
)

// Credential errors.
var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoCredential means the request carries no credential artifact.
	ErrNoCredential = errors.New("no credential")
	// ErrInvalidCredential means the artifact failed verification.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrExpiredCredential means the artifact verified but has expired.
	ErrExpiredCredential = errors.New("credential expired")
)

// Authenticator checks a username and password against stored users.
type Authenticator struct {
	users     store.UserStore
	dummyHash string
}

// NewAuthenticator creates an Authenticator backed by the user store.
func NewAuthenticator(users store.UserStore) (*Authenticator, error) {
	// Verified against when the user does not exist so response time
	// does not reveal which usernames are registered.
	dummy, err := HashPassword("folio-timing-equaliser")
	if err != nil {
		return nil, fmt.Errorf("preparing dummy hash: %w", err)
	}
	return &Authenticator{users: users, dummyHash: dummy}, nil
}

// Authenticate returns the user when the password matches its stored hash.
// It never issues anything itself; the caller hands the result to a Gate.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_, _ = CheckPassword(password, a.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	valid, err := CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.ErrorContext(ctx, "stored password hash is unreadable", "user_id", user.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if NeedsRehash(user.PasswordHash) {
		slog.InfoContext(ctx, "password hash uses outdated parameters; re-provision the account to upgrade",
			"user_id", user.ID)
	}

	return user, nil
}
