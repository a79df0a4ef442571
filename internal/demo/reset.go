// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package demo restores a public demo instance to its seed state.
package demo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/store"
)

const (
	// timestampFile is the name of the file storing the last reset time.
	timestampFile = ".last_reset"

	// resetInterval is how often the demo data should be refreshed.
	resetInterval = 24 * time.Hour
)

// Config wires a Resetter. Cache and the directories are optional.
type Config struct {
	Store      *store.MemoryStore
	Seed       store.SeedOptions
	Cache      cache.Cache
	UploadsDir string
	DataDir    string // holds the last-reset timestamp
	Logger     *slog.Logger
}

// Resetter wipes the memory store and reseeds it.
type Resetter struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewResetter creates a Resetter.
func NewResetter(cfg Config) *Resetter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resetter{cfg: cfg, logger: logger, now: time.Now}
}

// Reset empties the store, reseeds it, clears the read cache and the
// uploads directory, and records the reset time.
func (r *Resetter) Reset(ctx context.Context) error {
	r.cfg.Store.Reset()
	if err := store.Seed(ctx, r.cfg.Store, r.cfg.Seed); err != nil {
		return fmt.Errorf("reseeding store: %w", err)
	}
	r.logger.Info("demo store reset")

	if r.cfg.Cache != nil {
		if err := r.cfg.Cache.Clear(ctx); err != nil {
			r.logger.Warn("failed to clear cache after demo reset", "error", err)
		}
	}

	if r.cfg.UploadsDir != "" {
		if err := clearDir(r.cfg.UploadsDir); err != nil {
			return fmt.Errorf("clearing uploads: %w", err)
		}
		r.logger.Info("demo uploads cleared", "path", r.cfg.UploadsDir)
	}

	if r.cfg.DataDir != "" {
		if err := r.writeTimestamp(); err != nil {
			return fmt.Errorf("writing reset timestamp: %w", err)
		}
	}

	r.logger.Info("demo reset complete")
	return nil
}

// ResetIfNeeded resets when the last recorded reset is older than a day,
// covering an instance that was stopped over the nightly job.
func (r *Resetter) ResetIfNeeded(ctx context.Context) (bool, error) {
	last, ok, err := r.LastReset()
	if err != nil {
		return false, err
	}
	if ok && r.now().Sub(last) < resetInterval {
		r.logger.Info("demo reset not needed",
			"last_reset", last.UTC().Format(time.RFC3339),
			"next_reset", last.Add(resetInterval).UTC().Format(time.RFC3339),
		)
		return false, nil
	}

	r.logger.Info("demo reset overdue, resetting store and uploads")
	return true, r.Reset(ctx)
}

// LastReset returns the recorded reset time. ok is false when none is
// recorded or the record is unreadable.
func (r *Resetter) LastReset() (time.Time, bool, error) {
	if r.cfg.DataDir == "" {
		return time.Time{}, false, nil
	}
	data, err := os.ReadFile(filepath.Join(r.cfg.DataDir, timestampFile))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("reading reset timestamp: %w", err)
	}
	unixSec, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.Unix(unixSec, 0), true, nil
}

// clearDir removes all files and subdirectories inside dir,
// but keeps the directory itself.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

func (r *Resetter) writeTimestamp() error {
	if err := os.MkdirAll(r.cfg.DataDir, 0o755); err != nil {
		return err
	}
	tsPath := filepath.Join(r.cfg.DataDir, timestampFile)
	data := []byte(strconv.FormatInt(r.now().UTC().Unix(), 10))
	return os.WriteFile(tsPath, data, 0o644)
}
