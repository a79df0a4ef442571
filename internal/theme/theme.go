// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package theme persists the site appearance preference in a small JSON file.
package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Appearance values.
const (
	Light  = "light"
	Dark   = "dark"
	System = "system"
)

// Appearances lists the accepted values.
var Appearances = []string{Light, Dark, System}

// ErrInvalidAppearance is returned for values outside Appearances.
var ErrInvalidAppearance = errors.New("appearance must be light, dark or system")

// Preference is the stored document.
type Preference struct {
	Appearance string `json:"appearance"`
}

// FileStore reads and writes the preference file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store for the file at path. The file is created
// on the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Valid reports whether appearance is an accepted value.
func Valid(appearance string) bool {
	return slices.Contains(Appearances, appearance)
}

// Get returns the stored appearance, or System when none is stored.
func (s *FileStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) read() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return System, nil
	}
	if err != nil {
		return System, fmt.Errorf("reading theme file: %w", err)
	}
	var p Preference
	if err := json.Unmarshal(data, &p); err != nil || !Valid(p.Appearance) {
		return System, fmt.Errorf("theme file %s is malformed", s.path)
	}
	return p.Appearance, nil
}

// Set stores appearance. It reports whether the file was written; an
// unchanged value is not rewritten.
func (s *FileStore) Set(appearance string) (bool, error) {
	if !Valid(appearance) {
		return false, ErrInvalidAppearance
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if current, err := s.read(); err == nil && current == appearance {
		if _, statErr := os.Stat(s.path); statErr == nil {
			return false, nil
		}
	}

	data, err := json.MarshalIndent(Preference{Appearance: appearance}, "", "  ")
	if err != nil {
		return false, err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("creating theme directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return false, fmt.Errorf("writing theme file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return false, fmt.Errorf("replacing theme file: %w", err)
	}
	return true, nil
}
