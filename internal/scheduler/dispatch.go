package scheduler

import (
	"context"
	"fmt"
	"time"

	"schedulerd/pkg/types"
)

// dispatchLoop is the long-lived execution context consuming a single
// class queue (spec §4.4, component D). One goroutine per class; a
// separate loop per class is what gives isolation — a stalled Image
// worker never blocks the LM loop (spec §8 property 3).
func (s *Scheduler) dispatchLoop(class types.Class) {
	defer s.wg.Done()
	q := s.queues[class]
	backoff := s.cfg.InitialBackoff

	for {
		item, shuttingDown := q.next()
		if shuttingDown {
			if item == nil {
				return
			}
			// Drain path (spec §4.7 step 2): cancel rather than dispatch.
			if popped := q.popTop(); popped != nil {
				s.cancelRecord(popped.rec, "shutdown")
			}
			continue
		}

		worker, workerID, ok := s.registry.selectAndReserve(class)
		if !ok {
			// Backpressure (spec §4.4 step 3): leave the task at the head
			// and retry after a bounded, capped-exponential delay.
			timer := time.NewTimer(backoff)
			select {
			case <-timer.C:
			case <-s.shutdownCh:
				timer.Stop()
			}
			backoff *= 2
			if backoff > s.cfg.MaxBackoff {
				backoff = s.cfg.MaxBackoff
			}
			continue
		}
		backoff = s.cfg.InitialBackoff

		popped := q.popTop()
		if popped == nil || popped.id != item.id {
			// Queue mutated between peek and pop (e.g. concurrently
			// drained); nothing to run this round. The worker was already
			// reserved by selectAndReserve — release it.
			s.registry.markIdle(workerID)
			continue
		}

		rec := popped.rec
		rec.mu.Lock()
		if rec.status != types.StatusQueued {
			// Cancelled between peek and worker selection.
			rec.mu.Unlock()
			s.registry.markIdle(workerID)
			continue
		}
		_ = rec.transitionLocked(types.StatusRunning, time.Now())
		rec.mu.Unlock()

		s.stats[class].queued.Add(-1)
		s.stats[class].running.Add(1)
		s.publisher.Publish(Event{Name: "started", TaskID: rec.id, Fields: map[string]any{"worker_id": workerID}})

		s.runTask(class, workerID, worker, rec)
	}
}

// runTask invokes the worker synchronously (spec §4.4 step 5) and
// installs the terminal status on return (step 6). Panics from a worker
// are recovered and converted to Failed (spec §7) without tearing down
// the loop.
func (s *Scheduler) runTask(class types.Class, workerID string, worker Worker, rec *taskRecord) {
	ctx := context.Background() // dispatcher-owned; see doc.go
	progress := func(frac float64) { rec.setProgress(frac) }

	var result any
	var workErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				workErr = ErrWorker(fmt.Sprintf("worker panic: %v", r))
			}
		}()
		result, workErr = worker.Execute(ctx, rec.payload, progress)
	}()

	s.registry.markIdle(workerID)

	rec.mu.Lock()
	started := rec.startedAt
	var final types.Status
	if workErr != nil {
		_ = rec.transitionLocked(types.StatusFailed, time.Now())
		rec.err = workErr.Error()
		final = types.StatusFailed
	} else {
		_ = rec.transitionLocked(types.StatusCompleted, time.Now())
		rec.result = result
		final = types.StatusCompleted
	}
	fn, info, fire := rec.fireCompletionLocked()
	finished := rec.finishedAt
	rec.mu.Unlock()

	s.indexMu.Lock()
	delete(s.index, rec.id)
	s.indexMu.Unlock()

	cs := s.stats[class]
	cs.running.Add(-1)
	cs.serviceNanos.Add(int64(finished.Sub(started)))
	if final == types.StatusCompleted {
		cs.completed.Add(1)
	} else {
		cs.failed.Add(1)
	}
	s.publisher.Publish(Event{Name: string(final), TaskID: rec.id})

	s.invokeCompletion(class, rec.id, fn, info, fire)
}
