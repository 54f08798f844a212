// Package scheduler implements the multiplexing task scheduler described
// in SPEC_FULL.md: submission/dispatch state machine, per-class priority
// queues, worker binding under resource-isolation constraints, cooperative
// cancellation, and task-record lifecycle across concurrent producers and
// consumers. Workers, the HTTP surface, and monitoring are consumed only
// through the narrow interfaces this package exposes.
package scheduler

import (
	"sync"
	"sync/atomic"

	"schedulerd/pkg/types"
)

// Scheduler is the scheduling core (spec §2). Zero value is not usable;
// construct with New.
type Scheduler struct {
	cfg Config

	queues map[types.Class]*classQueue

	registry *WorkerRegistry

	indexMu sync.Mutex
	index   map[types.TaskID]*taskRecord

	nextID atomic.Uint64

	stats map[types.Class]*classStats

	resourceMu    sync.Mutex
	resourceUsage types.ResourceUsage

	publisher EventPublisher

	running          atomic.Bool
	handlersDisabled atomic.Bool
	shutdownCh       chan struct{}
	closeOnce        sync.Once
	wg               sync.WaitGroup
}

var allClasses = [...]types.Class{types.ClassLM, types.ClassTTS, types.ClassImage}

// New constructs a Scheduler. Call Start to spawn its dispatch loops.
func New(cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	s := &Scheduler{
		cfg:        cfg,
		queues:     make(map[types.Class]*classQueue, len(allClasses)),
		registry:   newWorkerRegistry(cfg.FirstLMWorkerExclusive, cfg.LMExclusiveWorkerID),
		index:      make(map[types.TaskID]*taskRecord),
		stats:      make(map[types.Class]*classStats, len(allClasses)),
		publisher:  cfg.Publisher,
		shutdownCh: make(chan struct{}),
	}
	for _, c := range allClasses {
		s.queues[c] = newClassQueue()
		s.stats[c] = &classStats{}
	}
	return s
}

// RegisterWorker adds w to the worker registry (spec §4.2). Safe to call
// before or after Start, but never concurrently with itself for the same
// worker id racing against a duplicate Register of that id.
func (s *Scheduler) RegisterWorker(w Worker) error {
	if err := s.registry.Register(w); err != nil {
		return err
	}
	s.publisher.Publish(Event{Name: "worker_registered", Fields: map[string]any{"worker_id": w.ID()}})
	return nil
}
