// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/olegiv/folio-go/internal/store"
)

func TestNew_MemoryStore(t *testing.T) {
	sm := New(Options{})

	if _, ok := sm.Store.(*memstore.MemStore); !ok {
		t.Errorf("Store = %T, want *memstore.MemStore", sm.Store)
	}
	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}
	if sm.Cookie.Name != CookieName {
		t.Errorf("Cookie.Name = %q, want %q", sm.Cookie.Name, CookieName)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("Cookie.HttpOnly should be true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("Cookie.SameSite = %v, want Lax", sm.Cookie.SameSite)
	}
}

func TestNew_SQLiteStore(t *testing.T) {
	db, err := store.NewDB(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db, store.DialectSQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	sm := New(Options{DB: db, Dialect: store.DialectSQLite, Lifetime: time.Hour, Secure: true})
	if _, ok := sm.Store.(*sqlite3store.SQLite3Store); !ok {
		t.Errorf("Store = %T, want *sqlite3store.SQLite3Store", sm.Store)
	}
	if !sm.Cookie.Secure {
		t.Error("Cookie.Secure should follow options")
	}

	// Round trip a value through the persisted store.
	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/put" {
			sm.Put(r.Context(), "k", "v")
			return
		}
		_, _ = w.Write([]byte(sm.GetString(r.Context(), "k")))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/put", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Body.String() != "v" {
		t.Errorf("session value = %q, want %q", rec.Body.String(), "v")
	}
}

func TestNew_ExternalDialectUsesSQLStore(t *testing.T) {
	db, err := store.NewDB(filepath.Join(t.TempDir(), "x.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sm := New(Options{DB: db, Dialect: store.DialectPostgres})
	s, ok := sm.Store.(*SQLStore)
	if !ok {
		t.Fatalf("Store = %T, want *SQLStore", sm.Store)
	}
	s.StopCleanup()
}

func TestSQLStore_Queries(t *testing.T) {
	pg := &SQLStore{dialect: store.DialectPostgres}
	if got := pg.q("pg", "other"); got != "pg" {
		t.Errorf("postgres query = %q", got)
	}
	my := &SQLStore{dialect: store.DialectMySQL}
	if got := my.q("pg", "other"); got != "other" {
		t.Errorf("mysql query = %q", got)
	}
}
