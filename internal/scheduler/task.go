package scheduler

import (
	"sync"
	"time"

	"schedulerd/pkg/types"
)

// CompletionFunc is invoked exactly once after a task reaches a terminal
// status (spec §3 invariant 2, §4.4 "Ordering guarantees"). For Completed,
// Failed and shutdown-drained tasks it runs in the class's dispatch
// goroutine; for a task cancelled through Cancel it runs in the goroutine
// that called Cancel, before Cancel returns. It is never called while a
// core lock is held, so a handler that re-submits work cannot deadlock
// against the lock it would need.
type CompletionFunc func(types.TaskInfo)

// taskRecord is the core's single owner of task state: the index map owns
// each record, with by-id handles everywhere else. All fields are guarded by mu;
// callers outside this package only ever see a types.TaskInfo copy.
type taskRecord struct {
	mu sync.Mutex

	id       types.TaskID
	class    types.Class
	priority types.Priority
	payload  any

	status     types.Status
	progress   float64
	result     any
	err        string

	submittedAt time.Time
	startedAt   time.Time
	finishedAt  time.Time

	completion CompletionFunc
	fired      bool
}

// transitionErr reports an illegal state transition attempt.
type transitionErr struct {
	from, to types.Status
}

func (e transitionErr) Error() string {
	return "invalid status transition: " + string(e.from) + " -> " + string(e.to)
}

// allowedTransitions encodes the DAG from spec §3 invariant 1.
var allowedTransitions = map[types.Status]map[types.Status]bool{
	types.StatusQueued: {
		types.StatusRunning:   true,
		types.StatusCancelled: true,
	},
	types.StatusRunning: {
		types.StatusCompleted: true,
		types.StatusFailed:    true,
	},
}

// transition validates and applies a status change, stamping the
// appropriate timestamp. Must be called with mu held.
func (t *taskRecord) transitionLocked(to types.Status, now time.Time) error {
	allowed := allowedTransitions[t.status]
	if !allowed[to] {
		return transitionErr{from: t.status, to: to}
	}
	t.status = to
	switch to {
	case types.StatusRunning:
		t.startedAt = now
	case types.StatusCompleted, types.StatusFailed, types.StatusCancelled:
		t.finishedAt = now
	}
	return nil
}

// snapshotLocked returns a TaskInfo copy. Must be called with mu held.
func (t *taskRecord) snapshotLocked() types.TaskInfo {
	return types.TaskInfo{
		ID:          t.id,
		Class:       t.class,
		Priority:    t.priority,
		Status:      t.status,
		Progress:    t.progress,
		Result:      t.result,
		Err:         t.err,
		SubmittedAt: t.submittedAt,
		StartedAt:   t.startedAt,
		FinishedAt:  t.finishedAt,
	}
}

// setProgress is safe to call from a worker's progress callback (§6.1)
// concurrently with dispatcher-side transitions.
func (t *taskRecord) setProgress(frac float64) {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	t.mu.Lock()
	t.progress = frac
	t.mu.Unlock()
}

// fireCompletionLocked marks the handler as fired and returns it plus the
// snapshot to deliver, or (nil, zero, false) if it already fired. Must be
// called with mu held; the caller invokes the returned func with no lock
// held (spec §5 "Completion handlers are invoked with no core lock held").
func (t *taskRecord) fireCompletionLocked() (CompletionFunc, types.TaskInfo, bool) {
	if t.fired || t.completion == nil {
		t.fired = true
		return nil, types.TaskInfo{}, false
	}
	t.fired = true
	return t.completion, t.snapshotLocked(), true
}
