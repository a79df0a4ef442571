// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Key prefixes of the public read endpoints. Admin writes invalidate the
// prefix of the kind they touch.
const (
	PrefixProjects = "projects:"
	PrefixSkills   = "skills:"
	PrefixBlogs    = "blogs:"
)

// GetOrLoad returns the JSON-decoded value at key, or calls load and
// stores its result. Cache failures degrade to calling load.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if data, err := c.Get(ctx, key); err == nil {
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			return value, nil
		}
		slog.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, ErrCacheMiss) {
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	data, err := json.Marshal(value)
	if err == nil {
		err = c.Set(ctx, key, data, ttl)
	}
	if err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return value, nil
}

// Invalidate drops every entry under the given prefixes.
func Invalidate(ctx context.Context, c Cache, prefixes ...string) {
	for _, p := range prefixes {
		if err := c.DeleteByPrefix(ctx, p); err != nil {
			slog.WarnContext(ctx, "cache invalidation failed", "prefix", p, "error", err)
		}
	}
}
