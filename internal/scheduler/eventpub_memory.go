package scheduler

import (
	"sync"

	"schedulerd/pkg/types"
)

// MemoryPublisher stores events in-memory; useful for tests and for small
// deployments that want to poll a task's lifecycle without wiring a real
// observability stack.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// ForTask returns, in publish order, the events recorded for one task —
// e.g. to assert a submit/start/complete sequence in a test without the
// caller filtering the full log itself.
func (p *MemoryPublisher) ForTask(id types.TaskID) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, e := range p.events {
		if e.TaskID == id {
			out = append(out, e)
		}
	}
	return out
}
