package scheduler

import (
	"time"

	"schedulerd/pkg/types"
)

// Cancel looks up id and, if it is still Queued, atomically transitions
// it to Cancelled, removes it from the index, and fires its completion
// handler with a Cancelled outcome (spec §4.6, component F). The record
// still physically sits in its class queue; the dispatch loop discards it
// the next time it reaches the head (queue.next).
func (s *Scheduler) Cancel(id types.TaskID) error {
	s.indexMu.Lock()
	rec, ok := s.index[id]
	s.indexMu.Unlock()
	if !ok {
		return notFoundError{id: idStr(id)}
	}

	rec.mu.Lock()
	switch rec.status {
	case types.StatusQueued:
		rec.mu.Unlock()
		s.cancelRecord(rec, "client")
		return nil
	case types.StatusRunning:
		rec.mu.Unlock()
		return tooLateError{id: idStr(id)}
	default:
		rec.mu.Unlock()
		return alreadyFinishedError{id: idStr(id)}
	}
}

// cancelRecord performs the Cancelled transition, index removal, stats
// update, and completion firing shared by Cancel and the shutdown drain
// path (dispatch.go). It re-checks status under lock since the caller may
// have released the lock between observing Queued and calling this.
func (s *Scheduler) cancelRecord(rec *taskRecord, reason string) bool {
	rec.mu.Lock()
	if rec.status != types.StatusQueued {
		rec.mu.Unlock()
		return false
	}
	_ = rec.transitionLocked(types.StatusCancelled, time.Now())
	fn, info, fire := rec.fireCompletionLocked()
	rec.mu.Unlock()

	s.indexMu.Lock()
	delete(s.index, rec.id)
	s.indexMu.Unlock()

	s.stats[rec.class].queued.Add(-1)
	s.stats[rec.class].cancelled.Add(1)
	s.publisher.Publish(Event{Name: "cancelled", TaskID: rec.id, Fields: map[string]any{"reason": reason}})

	s.invokeCompletion(rec.class, rec.id, fn, info, fire)
	return true
}

// Status returns the current status of id, or NotFound if id is unknown
// or has already been purged from the index after reaching a terminal
// state (spec §4.6 "status(id)"). No locks escape the call.
func (s *Scheduler) Status(id types.TaskID) (types.TaskInfo, error) {
	s.indexMu.Lock()
	rec, ok := s.index[id]
	s.indexMu.Unlock()
	if !ok {
		return types.TaskInfo{}, notFoundError{id: idStr(id)}
	}
	rec.mu.Lock()
	info := rec.snapshotLocked()
	rec.mu.Unlock()
	return info, nil
}

func idStr(id types.TaskID) string {
	return taskIDToString(id)
}
