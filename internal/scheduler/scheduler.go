// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: webhook retry
// sweeps, limiter pruning, GeoIP reloads and the demo reset.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 5 * time.Minute

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	LastRun  time.Time `json:"lastRun,omitzero"`
	NextRun  time.Time `json:"nextRun,omitzero"`
}

type job struct {
	name     string
	schedule string
	entryID  cron.EntryID
	run      func()
}

// Scheduler wraps a cron instance with named jobs.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.RWMutex
	jobs    map[string]*job
	running bool
}

// New creates a scheduler. Jobs run in the given location; nil means UTC.
func New(logger *slog.Logger, loc *time.Location) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: DefaultJobTimeout,
		jobs:    make(map[string]*job),
	}
}

// Add registers fn under name with a standard five-field cron spec or a
// descriptor such as "@every 1m".
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	j := &job{name: name, schedule: spec}
	j.run = func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		defer func() {
			if p := recover(); p != nil {
				s.logger.Error("scheduled job panicked", "job", name, "panic", p)
			}
		}()

		start := time.Now()
		if err := fn(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
	}

	id, err := s.cron.AddFunc(spec, j.run)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", spec, name, err)
	}
	j.entryID = id
	s.jobs[name] = j
	return nil
}

// Start begins running jobs. It is a no-op when already started.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out", "error", ctx.Err())
	}
}

// RunNow runs the named job synchronously outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	j.run()
	return nil
}

// Jobs lists registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		e := s.cron.Entry(j.entryID)
		out = append(out, JobInfo{
			Name:     j.name,
			Schedule: j.schedule,
			LastRun:  e.Prev,
			NextRun:  e.Next,
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}
