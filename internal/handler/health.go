// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the process-level HTTP handlers: health probes
// and the crawler documents served at the site root.
// The JSON API lives in the api subpackage.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/version"
)

// Check statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

const (
	pingTimeout  = 2 * time.Second
	minDiskSpace = 100 << 20
)

// Pinger is anything whose connectivity can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness, readiness and detailed health probes.
type HealthHandler struct {
	store      Pinger
	cache      Pinger
	uploadsDir string
	startTime  time.Time
}

// NewHealthHandler creates a health handler. cache may be nil.
func NewHealthHandler(store Pinger, cache Pinger, uploadsDir string) *HealthHandler {
	return &HealthHandler{
		store:      store,
		cache:      cache,
		uploadsDir: uploadsDir,
		startTime:  time.Now(),
	}
}

// HealthStatus is the detailed report shown to admins. Anonymous callers
// only see Status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp,omitzero"`
	Uptime    string           `json:"uptime,omitempty"`
	Version   *version.Info    `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check is the result of one probe.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo describes the running process.
type SystemInfo struct {
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutines"`
	NumCPU       int    `json:"numCpus"`
	MemAlloc     string `json:"memAlloc"`
	MemSys       string `json:"memSys"`
}

// Health handles GET /health. Any failing check degrades the service and
// answers 503; ?verbose=true adds process stats for admins.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := h.runChecks(r.Context())

	report := HealthStatus{Status: StatusHealthy}
	for _, c := range checks {
		if c.Status != StatusHealthy {
			report.Status = StatusDegraded
			break
		}
	}

	code := http.StatusOK
	if report.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}

	if isAdmin(r) {
		info := version.Current()
		report.Timestamp = time.Now().UTC()
		report.Uptime = time.Since(h.startTime).Round(time.Second).String()
		report.Version = &info
		report.Checks = checks
		if r.URL.Query().Get("verbose") == "true" {
			report.System = systemInfo()
		}
	}

	writeHealth(w, code, report)
}

// Liveness handles GET /health/live. It never touches dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready. The service is ready when the
// store answers a ping; the failure reason is shown to admins only.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	c := ping(r.Context(), h.store)
	if c.Status == StatusHealthy {
		writeHealth(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	resp := map[string]string{"status": "not_ready"}
	if isAdmin(r) {
		resp["message"] = c.Message
	}
	writeHealth(w, http.StatusServiceUnavailable, resp)
}

func (h *HealthHandler) runChecks(ctx context.Context) map[string]Check {
	checks := map[string]Check{
		"store": ping(ctx, h.store),
		"disk":  h.checkDiskSpace(),
	}
	if h.cache != nil {
		checks["cache"] = ping(ctx, h.cache)
	}
	return checks
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func isAdmin(r *http.Request) bool {
	id, ok := middleware.GetIdentity(r)
	return ok && id.IsAdmin
}

func ping(ctx context.Context, p Pinger) Check {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	c := Check{Status: StatusHealthy, Message: "Connected", Latency: time.Since(start).String()}
	if err != nil {
		c.Status = StatusUnhealthy
		c.Message = err.Error()
	}
	return c
}

// checkDiskSpace reports the free space on the uploads volume. A missing
// directory is fine; it is created on first upload.
func (h *HealthHandler) checkDiskSpace() Check {
	if _, err := os.Stat(h.uploadsDir); os.IsNotExist(err) {
		return Check{Status: StatusHealthy, Message: "Uploads directory does not exist yet"}
	}

	var fs syscall.Statfs_t
	if err := syscall.Statfs(h.uploadsDir, &fs); err != nil {
		return Check{Status: StatusUnhealthy, Message: "Failed to check disk space: " + err.Error()}
	}

	free := fs.Bavail * uint64(fs.Bsize)
	if free < minDiskSpace {
		return Check{Status: StatusDegraded, Message: "Low disk space: " + formatBytes(free) + " available"}
	}
	return Check{Status: StatusHealthy, Message: formatBytes(free) + " available"}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

func formatBytes(n uint64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	value := float64(n)
	unit := "B"
	for _, u := range []string{"KB", "MB", "GB"} {
		if value < 1024 {
			break
		}
		value /= 1024
		unit = u
	}
	return fmt.Sprintf("%.2f %s", value, unit)
}
