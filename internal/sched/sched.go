// Package sched runs fire-once deferred tasks: delayed message sends and
// standup flushes. Tasks fire exactly once, at or after their deadline, and
// are never cancelled; Stop only waits for tasks that are already running.
package sched

import (
	"log/slog"
	"sync"
	"time"
)

// Scheduler tracks pending deferred tasks. It is safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	pending int

	// after is injectable for tests; it defaults to time.AfterFunc.
	after func(d time.Duration, fn func()) *time.Timer
}

// New creates a Scheduler.
func New() *Scheduler {
	return &Scheduler{after: time.AfterFunc}
}

// Schedule arranges for fn to run once delay has elapsed. A non-positive
// delay still goes through the timer so callers always return before fn runs.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
	s.wg.Add(1)

	s.after(delay, func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.pending--
			s.mu.Unlock()
			if r := recover(); r != nil {
				slog.Error("deferred task panicked", "panic", r)
			}
		}()
		fn()
	})
}

// Pending returns the number of tasks that have been scheduled but not yet
// completed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Wait blocks until every scheduled task has completed or grace has elapsed,
// whichever comes first. Used during shutdown; tasks still pending after the
// grace period are abandoned with the process.
func (s *Scheduler) Wait(grace time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(grace):
		slog.Warn("shutdown grace elapsed with deferred tasks pending", "pending", s.Pending())
		return false
	}
}
