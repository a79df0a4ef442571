// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session builds the scs session manager used by session-mode
// authentication, persisting sessions next to the rest of the data.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/olegiv/folio-go/internal/store"
)

// CookieName is the session cookie name.
const CookieName = "folio_session"

// Options configures the session manager.
type Options struct {
	// DB holds the sessions table. Nil keeps sessions in memory.
	DB       *sql.DB
	Dialect  store.Dialect
	Lifetime time.Duration
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

// New creates a session manager whose store matches the storage backend.
func New(opts Options) *scs.SessionManager {
	sm := scs.New()

	switch {
	case opts.DB == nil:
		sm.Store = memstore.New()
	case opts.Dialect == store.DialectSQLite:
		sm.Store = sqlite3store.New(opts.DB)
	default:
		sm.Store = NewSQLStore(opts.DB, opts.Dialect, 5*time.Minute)
	}

	sm.Lifetime = opts.Lifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 24 * time.Hour
	}
	sm.Cookie.Name = CookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.Path = "/"
	sm.Cookie.Domain = opts.Domain
	sm.Cookie.SameSite = opts.SameSite
	if sm.Cookie.SameSite == 0 {
		sm.Cookie.SameSite = http.SameSiteLaxMode
	}
	sm.Cookie.Secure = opts.Secure

	return sm
}
