// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
)

var admin = model.Identity{UserID: 1, Username: "Abid", IsAdmin: true}

func TestTokenGate_LoginSetsHttpOnlyCookie(t *testing.T) {
	gate := NewTokenGate(NewTokenCodec(testSecret, time.Hour), CookieConfig{Name: "folio_auth", Secure: true})

	rec := httptest.NewRecorder()
	if err := gate.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil), admin); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != "folio_auth" || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie = %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(c)
	got, err := gate.Identity(req)
	if err != nil {
		t.Fatalf("Identity() error: %v", err)
	}
	if got != admin {
		t.Errorf("Identity() = %+v, want %+v", got, admin)
	}
}

func TestTokenGate_BearerHeader(t *testing.T) {
	codec := NewTokenCodec(testSecret, time.Hour)
	gate := NewTokenGate(codec, CookieConfig{})
	token, _, err := codec.Sign(admin)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, err := gate.Identity(req); err != nil {
		t.Errorf("Identity() error: %v", err)
	}
}

func TestTokenGate_Missing(t *testing.T) {
	gate := NewTokenGate(NewTokenCodec(testSecret, time.Hour), CookieConfig{})
	_, err := gate.Identity(httptest.NewRequest(http.MethodGet, "/", nil))
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("Identity() error = %v, want ErrNoCredential", err)
	}
	if !IsCredentialError(err) {
		t.Error("IsCredentialError() = false")
	}
}

func TestTokenGate_LogoutExpiresCookie(t *testing.T) {
	gate := NewTokenGate(NewTokenCodec(testSecret, time.Hour), CookieConfig{Name: "folio_auth"})

	for range 2 {
		rec := httptest.NewRecorder()
		if err := gate.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/logout", nil)); err != nil {
			t.Fatalf("Logout() error: %v", err)
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].MaxAge >= 0 || cookies[0].Value != "" {
			t.Errorf("logout cookie = %+v, want expired empty cookie", cookies)
		}
	}
}

func TestSessionGate_Lifecycle(t *testing.T) {
	sm := scs.New()
	gate := NewSessionGate(sm)

	var last model.Identity
	var lastErr error
	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			lastErr = gate.Login(w, r, admin)
		case "/logout":
			lastErr = gate.Logout(w, r)
		default:
			last, lastErr = gate.Identity(r)
		}
	}))

	do := func(path string, cookie *http.Cookie) *http.Cookie {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		for _, c := range rec.Result().Cookies() {
			return c
		}
		return cookie
	}

	do("/session", nil)
	if !errors.Is(lastErr, ErrNoCredential) {
		t.Fatalf("anonymous Identity() error = %v, want ErrNoCredential", lastErr)
	}

	cookie := do("/login", nil)
	if lastErr != nil {
		t.Fatalf("Login() error: %v", lastErr)
	}

	do("/session", cookie)
	if lastErr != nil || last != admin {
		t.Fatalf("Identity() = %+v, %v; want %+v", last, lastErr, admin)
	}

	do("/logout", cookie)
	if lastErr != nil {
		t.Fatalf("Logout() error: %v", lastErr)
	}

	do("/session", cookie)
	if !errors.Is(lastErr, ErrNoCredential) {
		t.Errorf("Identity() after logout error = %v, want ErrNoCredential", lastErr)
	}
}

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	hash, err := HashPassword("07928abid")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if _, err := st.CreateUser(ctx, model.NewUser{Username: "Abid", PasswordHash: hash, IsAdmin: true}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	a, err := NewAuthenticator(st)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}

	u, err := a.Authenticate(ctx, "Abid", "07928abid")
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if !u.IsAdmin || u.Username != "Abid" {
		t.Errorf("Authenticate() = %+v", u)
	}

	tests := []struct {
		name, username, password string
	}{
		{"wrong password", "Abid", "wrong"},
		{"unknown user", "nobody", "07928abid"},
		{"case sensitive username", "abid", "07928abid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Authenticate(ctx, tt.username, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}
