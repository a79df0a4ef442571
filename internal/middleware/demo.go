// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import "net/http"

// DemoModeMessage is returned when an action is blocked in demo mode.
const DemoModeMessage = "This action is disabled in demo mode"

// BlockInDemoMode rejects every request with 403 when enabled. It wraps
// routes with side effects outside the resettable store, such as uploads.
func BlockInDemoMode(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteAPIError(w, http.StatusForbidden, "demo_mode", DemoModeMessage, nil)
		})
	}
}
