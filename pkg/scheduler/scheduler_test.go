package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	mu     sync.Mutex
	calls  map[string]int
	active bool
}

func newFakeChecker(active bool) *fakeChecker {
	return &fakeChecker{calls: make(map[string]int), active: active}
}

func (f *fakeChecker) CheckConformance(ctx context.Context, declarationID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[declarationID]++
	return f.active, nil
}

func (f *fakeChecker) count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func TestStartMonitoringRunsPeriodicChecks(t *testing.T) {
	checker := newFakeChecker(true)
	s := New(Config{HeartbeatInterval: 10 * time.Millisecond}, checker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Run(ctx)

	require.NoError(t, s.StartMonitoring(ctx, "decl-1"))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.StopMonitoring(ctx, "decl-1"))

	assert.GreaterOrEqual(t, checker.count("decl-1"), 2)
}

func TestStartMonitoringIsIdempotent(t *testing.T) {
	checker := newFakeChecker(true)
	s := New(Config{HeartbeatInterval: 10 * time.Millisecond}, checker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Run(ctx)

	require.NoError(t, s.StartMonitoring(ctx, "decl-1"))
	require.NoError(t, s.StartMonitoring(ctx, "decl-1"))
	time.Sleep(40 * time.Millisecond)

	// A second identical loop would double the call count; assert it stays
	// within one loop's worth of ticks instead of two.
	assert.LessOrEqual(t, checker.count("decl-1"), 6)
	require.NoError(t, s.StopMonitoring(ctx, "decl-1"))
}

func TestMonitoringStopsWhenCheckerReportsInactive(t *testing.T) {
	checker := newFakeChecker(false)
	s := New(Config{HeartbeatInterval: 10 * time.Millisecond}, checker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Run(ctx)

	require.NoError(t, s.StartMonitoring(ctx, "decl-1"))
	time.Sleep(30 * time.Millisecond)

	countAfterStop := checker.count("decl-1")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, countAfterStop, checker.count("decl-1"))
}

func TestStopMonitoringWithoutStartIsNoOp(t *testing.T) {
	s := New(Config{}, newFakeChecker(true))
	ctx := context.Background()
	s.Run(ctx)
	assert.NoError(t, s.StopMonitoring(ctx, "never-started"))
}

func TestSubmitRetriesOnFailureThenSucceeds(t *testing.T) {
	s := New(Config{MaxAttempts: 3}, newFakeChecker(true))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Run(ctx)

	var attempts int
	var mu sync.Mutex
	s.Submit(JobSubmitDeclarationToDSS, func(ctx context.Context) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 2 {
			return assert.AnError
		}
		return nil
	})

	time.Sleep(1500 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}
