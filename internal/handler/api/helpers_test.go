// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/imaging"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/notify"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/testutil"
	"github.com/olegiv/folio-go/internal/theme"
)

const (
	testSecret        = "api-test-secret-key-32-bytes-long!"
	testAdminUser     = "admin"
	testAdminPassword = "correct-horse"
	testViewerUser    = "viewer"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []model.Message
	enabled  bool
	verify   error
}

func (n *fakeNotifier) RequestMeta(ip, _ string) notify.Meta { return notify.Meta{IP: ip} }

func (n *fakeNotifier) MessageCreated(msg model.Message, _ notify.Meta) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *fakeNotifier) EmailEnabled() bool { return n.enabled }

func (n *fakeNotifier) VerifyEmail(context.Context) error { return n.verify }

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

// testEnv is a fully wired API on a memory store in token mode.
type testEnv struct {
	t        *testing.T
	store    *store.MemoryStore
	handler  *Handler
	router   http.Handler
	notifier *fakeNotifier
	themes   *theme.FileStore
	uploads  string
}

type envOption func(*Config, *RouteOptions)

func withDemoMode() envOption {
	return func(_ *Config, o *RouteOptions) { o.DemoMode = true }
}

func withGate(g auth.Gate) envOption {
	return func(c *Config, _ *RouteOptions) { c.Gate = g }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	st := store.NewMemoryStore()
	ctx := context.Background()

	hash, err := auth.HashPassword(testAdminPassword)
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, model.NewUser{Username: testAdminUser, PasswordHash: hash, IsAdmin: true})
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, model.NewUser{Username: testViewerUser, PasswordHash: hash})
	require.NoError(t, err)

	authn, err := auth.NewAuthenticator(st)
	require.NoError(t, err)

	memCache := cache.NewMemoryCache(time.Minute, time.Minute)
	t.Cleanup(func() { _ = memCache.Close() })

	uploads := t.TempDir()
	env := &testEnv{
		t:        t,
		store:    st,
		notifier: &fakeNotifier{},
		themes:   theme.NewFileStore(filepath.Join(t.TempDir(), "theme.json")),
		uploads:  uploads,
	}

	cfg := Config{
		Store:         st,
		Authenticator: authn,
		Gate: auth.NewTokenGate(
			auth.NewTokenCodec([]byte(testSecret), time.Hour),
			auth.CookieConfig{Name: "folio_auth"},
		),
		Cache:      memCache,
		CacheTTL:   time.Minute,
		Notifier:   env.notifier,
		Themes:     env.themes,
		Images:     imaging.NewProcessor(uploads, "/uploads"),
		UploadsDir: uploads,
		Logger:     testutil.TestLoggerSilent(),
	}
	var routeOpts RouteOptions
	for _, o := range opts {
		o(&cfg, &routeOpts)
	}

	env.handler = NewHandler(cfg)
	r := chi.NewRouter()
	r.Mount("/api", env.handler.Routes(routeOpts))
	env.router = r
	return env
}

// do sends a JSON request through the router.
func (e *testEnv) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// login logs in and returns the credential cookies.
func (e *testEnv) login(username, password string) []*http.Cookie {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/login", LoginRequest{Username: username, Password: password})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(e.t, cookies)
	return cookies
}

func (e *testEnv) loginAdmin() []*http.Cookie {
	return e.login(testAdminUser, testAdminPassword)
}

func decodeJSONBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}
