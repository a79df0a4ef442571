// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/testutil"
)

// testSetup contains common test dependencies.
type testSetup struct {
	Store *store.MemoryStore
	Ctx   context.Context
	Now   time.Time
}

// setupTest creates a memory store holding one item of each kind.
func setupTest(t *testing.T) *testSetup {
	t.Helper()

	st := store.NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := st.CreateProject(ctx, model.NewProject{
		Title: "Folio", Description: "Portfolio backend", Technologies: []string{"Go", "SQLite"}, Featured: true, Order: 1,
	}); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	if _, err := st.CreateSkill(ctx, model.NewSkill{Name: "Go", Category: "Backend", Level: 90}); err != nil {
		t.Fatalf("failed to create skill: %v", err)
	}
	if _, err := st.CreateBlog(ctx, model.NewBlog{
		Title: "Hello", Slug: "hello", Content: "# Hi", Tags: "go,web", Published: true, CreatedAt: now,
	}); err != nil {
		t.Fatalf("failed to create blog: %v", err)
	}
	if _, err := st.CreateMessage(ctx, model.NewMessage{
		Name: "Jane", Email: "jane@example.com", Subject: "Hi", Message: "Hello there, friend",
	}); err != nil {
		t.Fatalf("failed to create message: %v", err)
	}

	return &testSetup{Store: st, Ctx: ctx, Now: now}
}

func newTestExporter(ts *testSetup) *Exporter {
	e := NewExporter(ts.Store, testutil.TestLoggerSilent())
	e.now = func() time.Time { return ts.Now }
	return e
}
