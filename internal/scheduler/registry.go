package scheduler

import (
	"context"
	"sync"

	"schedulerd/pkg/types"
)

// ProgressFunc reports fractional progress in [0,1]; the dispatch loop
// builds one per task and hands it to Execute so Image workers can call it
// from their own goroutine (spec §6.1). It is safe to call concurrently
// with dispatch.
type ProgressFunc func(fraction float64)

// Worker is the narrow contract the core consumes from actual inference
// engines (spec §6.1). Execute is synchronous and may block for seconds;
// it must not retain the payload or progress func beyond the call.
type Worker interface {
	ID() string
	Capabilities() []types.Class
	Execute(ctx context.Context, payload any, progress ProgressFunc) (result any, err error)
}

// workerSlot is the registry's bookkeeping around one registered Worker.
type workerSlot struct {
	worker Worker
	caps   map[types.Class]bool
	busy   bool
}

// WorkerRegistry tracks registered workers, their capability sets, and
// busy flags (spec §4.2, component B). Guarded by its own lock, acquired
// after the queue lock per the lock-order rule in spec §5.
type WorkerRegistry struct {
	mu sync.Mutex

	order   []string // registration order; selectAndReserve ties break on this
	slots   map[string]*workerSlot
	byClass map[types.Class][]string // ids capable of a class, registration order

	lmExclusiveID          string
	firstLMWorkerExclusive bool
	forcedLMExclusiveID    string
}

func newWorkerRegistry(firstLMExclusive bool, forcedID string) *WorkerRegistry {
	return &WorkerRegistry{
		slots:                  make(map[string]*workerSlot),
		byClass:                make(map[types.Class][]string),
		firstLMWorkerExclusive: firstLMExclusive,
		forcedLMExclusiveID:    forcedID,
	}
}

// Register adds w to the registry. Fails with AlreadyRegistered if w.ID()
// collides with an existing entry (spec §4.2).
func (r *WorkerRegistry) Register(w Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := w.ID()
	if _, exists := r.slots[id]; exists {
		return alreadyRegisteredError{id: id}
	}

	caps := make(map[types.Class]bool, len(w.Capabilities()))
	hasLM := false
	for _, c := range w.Capabilities() {
		caps[c] = true
		if c == types.ClassLM {
			hasLM = true
		}
	}

	r.slots[id] = &workerSlot{worker: w, caps: caps, busy: false}
	r.order = append(r.order, id)
	for c := range caps {
		r.byClass[c] = append(r.byClass[c], id)
	}

	if r.forcedLMExclusiveID != "" {
		if id == r.forcedLMExclusiveID {
			r.lmExclusiveID = id
		}
	} else if r.firstLMWorkerExclusive && hasLM && r.lmExclusiveID == "" {
		r.lmExclusiveID = id
	}
	return nil
}

// selectAndReserve finds an idle worker capable of class, honoring the
// LM-exclusive rule (spec §4.2: the LM-exclusive worker is only eligible
// when class is LM), and marks it busy before releasing r.mu. Selection
// and reservation must happen under one lock acquisition — a worker
// registered against more than one class (spec §4.5's shared-pool
// configuration) has one dispatch loop per class racing to claim it, and
// a select-then-separately-mark-busy sequence lets two loops both see it
// idle and both dispatch to it. Tie-breaking is deterministic by
// registration order so tests are reproducible.
func (r *WorkerRegistry) selectAndReserve(class types.Class) (Worker, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.byClass[class] {
		slot := r.slots[id]
		if slot.busy {
			continue
		}
		if id == r.lmExclusiveID && class != types.ClassLM {
			continue
		}
		slot.busy = true
		return slot.worker, id, true
	}
	return nil, "", false
}

// markIdle releases the reservation selectAndReserve made; the two must
// be paired around exactly one task execution (spec §4.2).
func (r *WorkerRegistry) markIdle(id string) {
	r.mu.Lock()
	if slot, ok := r.slots[id]; ok {
		slot.busy = false
	}
	r.mu.Unlock()
}

// snapshot reports worker id -> busy for the stats/status surface.
func (r *WorkerRegistry) snapshot() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool, len(r.slots))
	for id, slot := range r.slots {
		out[id] = slot.busy
	}
	return out
}
