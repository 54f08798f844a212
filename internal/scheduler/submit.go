package scheduler

import (
	"time"

	"schedulerd/pkg/types"
)

// Submit enrolls a task record, indexes it, and pushes it onto the
// matching class queue (spec §4.3, component E). Submission blocks only
// briefly on the affected class's queue lock and the index lock — no
// other blocking happens in this call (spec §5).
func (s *Scheduler) Submit(class types.Class, priority types.Priority, payload any, completion CompletionFunc) (types.TaskID, error) {
	if !class.Valid() {
		return 0, invalidArgumentError{reason: "unknown class " + string(class)}
	}
	if !priority.Valid() {
		return 0, invalidArgumentError{reason: "unknown priority"}
	}
	if s.shutdownStarted() {
		return 0, shutdownInProgressError{}
	}

	id := types.TaskID(s.nextID.Add(1))
	now := time.Now()
	rec := &taskRecord{
		id:          id,
		class:       class,
		priority:    priority,
		payload:     payload,
		status:      types.StatusQueued,
		submittedAt: now,
		completion:  completion,
	}

	s.indexMu.Lock()
	// Shutdown may have begun since the check above; re-check before
	// indexing the record.
	if s.shutdownStarted() {
		s.indexMu.Unlock()
		return 0, shutdownInProgressError{}
	}
	s.index[id] = rec
	s.indexMu.Unlock()

	s.queues[class].push(&queueItem{priority: priority, id: id, rec: rec})
	s.stats[class].submitted.Add(1)
	s.stats[class].queued.Add(1)

	s.publisher.Publish(Event{Name: "submitted", TaskID: id, Fields: map[string]any{
		"class": string(class), "priority": priority.String(),
	}})
	return id, nil
}

// shutdownStarted reports whether Shutdown has been called. Submissions
// made before Start are accepted and wait in their queue until the
// dispatch loops start.
func (s *Scheduler) shutdownStarted() bool {
	select {
	case <-s.shutdownCh:
		return true
	default:
		return false
	}
}
