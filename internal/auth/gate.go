// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/folio-go/internal/model"
)

// Gate issues, reads and revokes the credential artifact of a request.
type Gate interface {
	// Login issues a credential for id on the response.
	Login(w http.ResponseWriter, r *http.Request, id model.Identity) error
	// Identity returns the identity carried by the request credential.
	Identity(r *http.Request) (model.Identity, error)
	// Logout revokes the credential. It is idempotent.
	Logout(w http.ResponseWriter, r *http.Request) error
}

// CookieConfig describes the credential cookie.
type CookieConfig struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// TokenGate stores a signed token in an HttpOnly cookie. It also accepts
// the token as an "Authorization: Bearer" header.
type TokenGate struct {
	codec  *TokenCodec
	cookie CookieConfig
}

var _ Gate = (*TokenGate)(nil)

// NewTokenGate creates a gate issuing tokens from codec.
func NewTokenGate(codec *TokenCodec, cookie CookieConfig) *TokenGate {
	if cookie.Name == "" {
		cookie.Name = "folio_auth"
	}
	if cookie.SameSite == 0 {
		cookie.SameSite = http.SameSiteLaxMode
	}
	return &TokenGate{codec: codec, cookie: cookie}
}

func (g *TokenGate) Login(w http.ResponseWriter, _ *http.Request, id model.Identity) error {
	token, expires, err := g.codec.Sign(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, g.newCookie(token, expires, int(time.Until(expires).Seconds())))
	return nil
}

func (g *TokenGate) Identity(r *http.Request) (model.Identity, error) {
	token := bearerToken(r)
	if token == "" {
		c, err := r.Cookie(g.cookie.Name)
		if err != nil || c.Value == "" {
			return model.Identity{}, ErrNoCredential
		}
		token = c.Value
	}
	return g.codec.Parse(token)
}

func (g *TokenGate) Logout(w http.ResponseWriter, _ *http.Request) error {
	http.SetCookie(w, g.newCookie("", time.Unix(0, 0), -1))
	return nil
}

func (g *TokenGate) newCookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     g.cookie.Name,
		Value:    value,
		Path:     "/",
		Domain:   g.cookie.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.cookie.Secure,
		SameSite: g.cookie.SameSite,
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Session keys.
const (
	sessionKeyUserID   = "user_id"
	sessionKeyUsername = "username"
	sessionKeyIsAdmin  = "is_admin"
)

// SessionGate keeps the identity in a server-side scs session. Requests
// must pass through the session manager's LoadAndSave middleware.
type SessionGate struct {
	sm *scs.SessionManager
}

var _ Gate = (*SessionGate)(nil)

// NewSessionGate creates a gate backed by sm.
func NewSessionGate(sm *scs.SessionManager) *SessionGate {
	return &SessionGate{sm: sm}
}

func (g *SessionGate) Login(_ http.ResponseWriter, r *http.Request, id model.Identity) error {
	// New token on privilege change prevents session fixation.
	if err := g.sm.RenewToken(r.Context()); err != nil {
		return err
	}
	g.sm.Put(r.Context(), sessionKeyUserID, id.UserID)
	g.sm.Put(r.Context(), sessionKeyUsername, id.Username)
	g.sm.Put(r.Context(), sessionKeyIsAdmin, id.IsAdmin)
	return nil
}

func (g *SessionGate) Identity(r *http.Request) (model.Identity, error) {
	ctx := r.Context()
	if !g.sm.Exists(ctx, sessionKeyUserID) {
		// scs drops expired sessions on load, so expiry looks like absence.
		return model.Identity{}, ErrNoCredential
	}
	id := model.Identity{
		UserID:   g.sm.GetInt64(ctx, sessionKeyUserID),
		Username: g.sm.GetString(ctx, sessionKeyUsername),
		IsAdmin:  g.sm.GetBool(ctx, sessionKeyIsAdmin),
	}
	if id.UserID == 0 {
		return model.Identity{}, ErrInvalidCredential
	}
	return id, nil
}

func (g *SessionGate) Logout(_ http.ResponseWriter, r *http.Request) error {
	return g.sm.Destroy(r.Context())
}

// IsCredentialError reports whether err means the request is unauthenticated.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrNoCredential) || errors.Is(err, ErrInvalidCredential) || errors.Is(err, ErrExpiredCredential)
}
