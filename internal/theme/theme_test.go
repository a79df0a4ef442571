// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_DefaultsToSystem(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "theme.json"))
	got, err := s.Get()
	if err != nil || got != System {
		t.Errorf("Get() = %q, %v; want system", got, err)
	}
}

func TestFileStore_SetSkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "theme.json")
	s := NewFileStore(path)

	written, err := s.Set(Dark)
	if err != nil || !written {
		t.Fatalf("first Set() = %v, %v", written, err)
	}
	got, _ := s.Get()
	if got != Dark {
		t.Errorf("Get() = %q, want dark", got)
	}

	written, err = s.Set(Dark)
	if err != nil || written {
		t.Errorf("repeated Set() = %v, %v; want no write", written, err)
	}

	written, _ = s.Set(Light)
	if !written {
		t.Error("changed Set() did not write")
	}
}

func TestFileStore_SetInvalid(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "theme.json"))
	if _, err := s.Set("sepia"); !errors.Is(err, ErrInvalidAppearance) {
		t.Errorf("Set(sepia) error = %v", err)
	}
}

func TestFileStore_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)

	got, err := s.Get()
	if err == nil || got != System {
		t.Errorf("Get() = %q, %v; want system with error", got, err)
	}

	written, err := s.Set(System)
	if err != nil || !written {
		t.Errorf("Set() over malformed file = %v, %v", written, err)
	}
}
