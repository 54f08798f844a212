package scheduler

import (
	"strconv"

	"schedulerd/pkg/types"
)

func taskIDToString(id types.TaskID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// invokeCompletion runs fn with no core lock held and recovers from a
// panicking handler so it cannot poison the scheduler (spec §7:
// "Completion-handler exceptions are caught, logged... and swallowed").
// fire is false when another caller already fired this task's handler
// (spec §3 invariant 2: exactly once).
func (s *Scheduler) invokeCompletion(class types.Class, id types.TaskID, fn CompletionFunc, info types.TaskInfo, fire bool) {
	if !fire || fn == nil {
		return
	}
	if s.handlersDisabled.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.stats[class].handlerErrors.Add(1)
			s.publisher.Publish(Event{Name: "handler_error", TaskID: id, Fields: map[string]any{"recovered": r}})
		}
	}()
	fn(info)
}
