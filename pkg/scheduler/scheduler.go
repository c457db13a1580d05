// Package scheduler implements component G: the worker pool that runs the
// three background job kinds Flight Blender's Celery workers ran in the
// reference system (DSS submission, periodic conformance checks, and
// peer-USS update notification), reimplemented as goroutines coordinated by
// golang.org/x/sync/errgroup. Grounded on
// original_source/flight_declaration_operations/tasks.py
// (submit_flight_declaration_to_dss(_async)) and
// original_source/dss_operations/tasks.py (poll_uss_for_flights_async).
package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flightblender/coordination-engine/internal/logger"
)

// JobKind names the three background job families the scheduler runs.
type JobKind string

const (
	JobSubmitDeclarationToDSS     JobKind = "submit_declaration_to_dss"
	JobCheckFlightConformance     JobKind = "check_flight_conformance"
	JobSendOperationalUpdate      JobKind = "send_operational_update_message"
)

// defaultHeartbeat is the periodic conformance check interval, overridden
// by Config.HeartbeatInterval (HEARTBEAT_RATE_SECS in the reference
// system's settings).
const defaultHeartbeat = 5 * time.Second

// Config configures a Scheduler.
type Config struct {
	HeartbeatInterval time.Duration
	MaxAttempts       int
}

// ConformanceChecker runs one conformance pass for a declaration. It
// returns false when the declaration is no longer active and monitoring
// should stop on its own (e.g. it has ended or expired), mirroring the
// reference task's self-deactivation on a flight's end_datetime.
type ConformanceChecker interface {
	CheckConformance(ctx context.Context, declarationID string) (active bool, err error)
}

// Scheduler runs each submitted job and each per-declaration periodic
// conformance monitoring loop as its own goroutine in one errgroup; the
// number running at once is not limited. It implements
// pkg/orchestrator.ConformanceScheduler.
type Scheduler struct {
	cfg     Config
	checker ConformanceChecker

	mu       sync.Mutex
	cancels  map[string]context.CancelFunc
	group    *errgroup.Group
	groupCtx context.Context
}

// New constructs a Scheduler bound to checker for periodic conformance
// passes. Call Run to start the background errgroup before submitting any
// jobs or starting monitoring.
func New(cfg Config, checker ConformanceChecker) *Scheduler {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeat
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Scheduler{cfg: cfg, checker: checker, cancels: make(map[string]context.CancelFunc)}
}

// Run starts the scheduler's background errgroup bound to ctx. Every job
// and monitoring loop submitted afterward runs under this group; Wait
// blocks until ctx is cancelled and every outstanding job has returned.
func (s *Scheduler) Run(ctx context.Context) {
	group, groupCtx := errgroup.WithContext(ctx)
	s.mu.Lock()
	s.group = group
	s.groupCtx = groupCtx
	s.mu.Unlock()
}

// Wait blocks until the scheduler's background group drains, returning the
// first error any job returned.
func (s *Scheduler) Wait() error {
	s.mu.Lock()
	group := s.group
	s.mu.Unlock()
	if group == nil {
		return nil
	}
	return group.Wait()
}

// Submit runs fn as a one-shot background job of the given kind, retrying
// up to Config.MaxAttempts times with linear backoff on error, matching the
// reference system's Celery `max_retries` task option.
func (s *Scheduler) Submit(kind JobKind, fn func(ctx context.Context) error) {
	s.mu.Lock()
	group, groupCtx := s.group, s.groupCtx
	s.mu.Unlock()
	if group == nil {
		return
	}

	group.Go(func() error {
		var lastErr error
		for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
			if err := fn(groupCtx); err != nil {
				lastErr = err
				logger.Warn("background job attempt failed",
					"job_kind", string(kind), "attempt", attempt, "max_attempts", s.cfg.MaxAttempts, "error", err.Error())
				select {
				case <-groupCtx.Done():
					return groupCtx.Err()
				case <-time.After(time.Duration(attempt) * time.Second):
				}
				continue
			}
			return nil
		}
		logger.Error("background job exhausted retries", "job_kind", string(kind), "error", lastErr)
		return nil // a failed background job never tears down the whole scheduler
	})
}

// StartMonitoring launches the periodic conformance-check loop for
// declarationID, implementing pkg/orchestrator.ConformanceScheduler.
func (s *Scheduler) StartMonitoring(ctx context.Context, declarationID string) error {
	s.mu.Lock()
	if _, exists := s.cancels[declarationID]; exists {
		s.mu.Unlock()
		return nil // already monitoring; idempotent per Testable Property on duplicate activation
	}
	loopCtx, cancel := context.WithCancel(s.groupCtx)
	s.cancels[declarationID] = cancel
	group := s.group
	s.mu.Unlock()

	if group == nil {
		cancel()
		return nil
	}

	group.Go(func() error {
		ticker := time.NewTicker(s.cfg.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return nil
			case <-ticker.C:
				active, err := s.checker.CheckConformance(loopCtx, declarationID)
				if err != nil {
					logger.Warn("conformance check failed", "declaration_id", declarationID, "error", err.Error())
				}
				if !active {
					s.StopMonitoring(loopCtx, declarationID)
					return nil
				}
			}
		}
	})
	return nil
}

// StopMonitoring cancels the periodic conformance-check loop for
// declarationID, implementing pkg/orchestrator.ConformanceScheduler. It is
// a no-op if no loop is running.
func (s *Scheduler) StopMonitoring(ctx context.Context, declarationID string) error {
	s.mu.Lock()
	cancel, exists := s.cancels[declarationID]
	if exists {
		delete(s.cancels, declarationID)
	}
	s.mu.Unlock()

	if exists {
		cancel()
	}
	return nil
}
