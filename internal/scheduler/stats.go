package scheduler

import (
	"sync/atomic"
	"time"

	"schedulerd/pkg/types"
)

// classStats holds the atomic counters maintained per class (spec §4.8,
// component H). Reads never take a lock; a caller must tolerate slight
// skew between counters taken in the same snapshot pass.
type classStats struct {
	submitted     atomic.Uint64
	completed     atomic.Uint64
	failed        atomic.Uint64
	cancelled     atomic.Uint64
	handlerErrors atomic.Uint64
	queued        atomic.Int64
	running       atomic.Int64
	serviceNanos  atomic.Int64
}

func (s *classStats) snapshot() types.ClassStats {
	return types.ClassStats{
		Submitted:       s.submitted.Load(),
		Completed:       s.completed.Load(),
		Failed:          s.failed.Load(),
		Cancelled:       s.cancelled.Load(),
		HandlerErrors:   s.handlerErrors.Load(),
		CurrentlyQueued: uint64(max0(s.queued.Load())),
		CurrentlyRun:    uint64(max0(s.running.Load())),
		ServiceTimeSum:  time.Duration(s.serviceNanos.Load()),
	}
}

func max0(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// StatsSnapshot returns a point-in-time view of every class's counters
// plus whatever ResourceUsage the owner last recorded via SetResourceUsage.
func (s *Scheduler) StatsSnapshot() types.StatsSnapshot {
	out := types.StatsSnapshot{Classes: make(map[types.Class]types.ClassStats, len(s.stats))}
	for class, cs := range s.stats {
		out.Classes[class] = cs.snapshot()
	}
	s.resourceMu.Lock()
	out.ResourceUsage = s.resourceUsage
	s.resourceMu.Unlock()
	return out
}

// SetResourceUsage records the last-known CPU/GPU/memory figures for the
// stats surface. The core never measures these itself (SPEC_FULL §5); an
// owner with OS/GPU telemetry calls this periodically.
func (s *Scheduler) SetResourceUsage(u types.ResourceUsage) {
	s.resourceMu.Lock()
	s.resourceUsage = u
	s.resourceMu.Unlock()
}
