// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/folio-go/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a test logger that only outputs errors.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestSQLStore opens a migrated sqlite store in a temporary directory.
// It is closed when the test finishes.
func TestSQLStore(t *testing.T) *store.SQLStore {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "folio-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db, store.DialectSQLite); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	st := store.NewSQLStore(db, store.DialectSQLite)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// MustSeed seeds st with an admin account and fails the test on error.
func MustSeed(t *testing.T, st store.Store, username, passwordHash string) {
	t.Helper()
	err := store.Seed(context.Background(), st, store.SeedOptions{
		AdminUsername:     username,
		AdminPasswordHash: passwordHash,
	})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
}
