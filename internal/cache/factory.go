// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"net/url"
	"time"
)

// Backend names reported by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and tunes the cache backend.
type Config struct {
	// RedisURL selects Redis when set.
	RedisURL   string
	Prefix     string
	DefaultTTL time.Duration
	// FallbackToMemory keeps the process running on an in-memory cache
	// when Redis is unreachable at start.
	FallbackToMemory bool
}

// New creates the configured cache and reports which backend is in use.
func New(ctx context.Context, cfg Config) (Cache, string, error) {
	if cfg.RedisURL == "" {
		return NewMemoryCache(cfg.DefaultTTL, time.Minute), BackendMemory, nil
	}

	opts := DefaultRedisOptions()
	opts.URL = cfg.RedisURL
	if cfg.Prefix != "" {
		opts.Prefix = cfg.Prefix
	}
	if cfg.DefaultTTL > 0 {
		opts.DefaultTTL = cfg.DefaultTTL
	}

	rc, err := NewRedisCache(ctx, opts)
	if err != nil {
		if !cfg.FallbackToMemory {
			return nil, "", err
		}
		slog.Warn("redis unavailable, falling back to memory cache",
			"url", MaskRedisURL(cfg.RedisURL), "error", err)
		return NewMemoryCache(cfg.DefaultTTL, time.Minute), BackendMemory, nil
	}
	return rc, BackendRedis, nil
}

// MaskRedisURL hides the password of a Redis URL for logging.
func MaskRedisURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "redis://***"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
