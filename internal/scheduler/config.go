package scheduler

import "time"

// Defaults applied when the corresponding Config field is unset, mirroring
// the teacher's defaultMaxQueueDepth/defaultMaxWait pattern.
const (
	defaultQueueDepth  = 256
	defaultBackoff     = 20 * time.Millisecond
	defaultMaxBackoff  = 100 * time.Millisecond // spec §4.4 step 3 caps backoff at 100ms
	defaultGrace       = 5 * time.Second
)

// Config encapsulates all tunables for New. The HTTP/config-file layer is
// out of scope for this package (spec §1); callers resolve a Config from
// flags, env, or internal/config and pass it in directly.
type Config struct {
	// QueueDepth is accepted and defaulted but not read anywhere else in
	// the scheduler: the class queues are unbounded heaps.
	QueueDepth int

	// InitialBackoff and MaxBackoff bound the backpressure retry delay a
	// dispatch loop uses when no idle worker is available (spec §4.4 step 3).
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// DefaultGrace is used by Shutdown when the caller passes grace<=0.
	DefaultGrace time.Duration

	// LMExclusiveWorkerID, if set, forces that specific worker id to be
	// the LM-exclusive worker regardless of registration order. If empty,
	// the first registered worker whose capabilities include LM becomes
	// LM-exclusive, as configured by FirstLMWorkerExclusive.
	LMExclusiveWorkerID string

	// FirstLMWorkerExclusive reproduces the original's "first LM worker is
	// dedicated" convention as an explicit opt-in (see DESIGN.md, Open
	// Question decisions).
	FirstLMWorkerExclusive bool

	// Publisher receives lifecycle events; defaults to a no-op publisher.
	Publisher EventPublisher
}

func (c Config) withDefaults() Config {
	if c.QueueDepth <= 0 {
		c.QueueDepth = defaultQueueDepth
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	if c.DefaultGrace <= 0 {
		c.DefaultGrace = defaultGrace
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}
	return c
}
