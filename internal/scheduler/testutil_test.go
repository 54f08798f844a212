package scheduler

import (
	"context"
	"sync"

	"schedulerd/pkg/types"
)

// fakeWorker is a minimal Worker used across the test suite. fn, when set,
// computes the result/error from the payload; otherwise Execute echoes the
// payload back unchanged.
type fakeWorker struct {
	id   string
	caps []types.Class
	fn   func(payload any, progress ProgressFunc) (any, error)

	mu      sync.Mutex
	started []any
}

func (w *fakeWorker) ID() string                  { return w.id }
func (w *fakeWorker) Capabilities() []types.Class { return w.caps }

func (w *fakeWorker) Execute(ctx context.Context, payload any, progress ProgressFunc) (any, error) {
	w.mu.Lock()
	w.started = append(w.started, payload)
	w.mu.Unlock()
	if w.fn != nil {
		return w.fn(payload, progress)
	}
	return payload, nil
}

func (w *fakeWorker) startOrder() []any {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]any, len(w.started))
	copy(out, w.started)
	return out
}

// newResultChan returns a channel with room for one completion result; a
// handler sends on it and the test selects on it with a timeout.
func newResultChan() chan types.TaskInfo {
	return make(chan types.TaskInfo, 1)
}
