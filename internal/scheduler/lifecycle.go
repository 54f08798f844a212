package scheduler

import (
	"context"
	"time"
)

// InfiniteGrace tells Shutdown to block until every dispatch loop has
// returned, however long running tasks take (spec §8 property 4).
const InfiniteGrace time.Duration = -1

// errShutdownGraceExceeded signals that Shutdown returned before all
// dispatch loops drained; further completion handlers will not fire.
type errShutdownGraceExceeded struct{}

func (errShutdownGraceExceeded) Error() string { return "shutdown: grace period exceeded" }

// IsGraceExceeded reports whether err indicates Shutdown returned early.
func IsGraceExceeded(err error) bool {
	_, ok := err.(errShutdownGraceExceeded)
	return ok
}

// Start spawns one dispatch loop per class (spec §4.7). Idempotent.
func (s *Scheduler) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	for _, c := range allClasses {
		s.wg.Add(1)
		go s.dispatchLoop(c)
	}
}

// Running reports whether Start has been called and Shutdown has not.
func (s *Scheduler) Running() bool { return s.running.Load() }

// Shutdown stops accepting submissions, drains every class queue by
// cancelling what remains Queued, and lets at-most-one Running task per
// worker finish (spec §4.7). grace bounds how long to wait for dispatch
// loops to return; pass InfiniteGrace to wait unconditionally, or <=0 to
// use the configured default. If grace elapses first, Shutdown returns
// errShutdownGraceExceeded and the core stops invoking further completion
// handlers, though the straggler goroutines themselves are left to finish
// on their own — the core never kills a worker call mid-flight.
func (s *Scheduler) Shutdown(grace time.Duration) error {
	s.closeOnce.Do(func() {
		s.running.Store(false)
		close(s.shutdownCh)
		for _, c := range allClasses {
			s.queues[c].signalShutdown()
		}
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	if grace == InfiniteGrace {
		<-done
		return nil
	}
	if grace <= 0 {
		grace = s.cfg.DefaultGrace
	}
	select {
	case <-done:
		return nil
	case <-time.After(grace):
		s.handlersDisabled.Store(true)
		return errShutdownGraceExceeded{}
	}
}

// Drain blocks until every submitted task has reached a terminal state
// and been purged from the index, without stopping the dispatch loops —
// a quiesce checkpoint distinct from Shutdown (SPEC_FULL §5, folding the
// original scheduler's waitForAllTasks). Returns ctx.Err() if ctx expires
// first.
func (s *Scheduler) Drain(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		s.indexMu.Lock()
		empty := len(s.index) == 0
		s.indexMu.Unlock()
		if empty {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
