// Package scheduler is structured into small files by concern, one per
// component of SPEC_FULL.md §2:
//
//   - task.go: taskRecord, the DAG-validated status transition (component A).
//   - registry.go: WorkerRegistry, capability sets, the LM-exclusive rule (B).
//   - queue.go: classQueue, a (priority DESC, id ASC) heap per class (C).
//   - dispatch.go: dispatchLoop/runTask, one goroutine per class (D).
//   - submit.go: Submit, the producer entry point (E).
//   - cancel.go: Cancel/Status (F).
//   - lifecycle.go: Start/Shutdown/Drain (G).
//   - stats.go: StatsSnapshot and the atomic per-class counters (H).
//   - events.go / eventpub_memory.go: the EventPublisher observer hook.
//   - config.go / errors.go / helpers.go: construction, error taxonomy, shared bits.
//
// Workers are invoked synchronously from the dispatcher's own goroutine on
// a background context (spec §6.1: "Must be safe to call from the
// dispatcher context"); the scheduler never spawns an auxiliary goroutine
// per task. Cancellation is cooperative only — a Running task cannot be
// interrupted, so the context passed to Execute exists for a worker's own
// optional use (e.g. an HTTP-backed engine enforcing its own deadline),
// not for the core to signal abandonment.
//
// Callers outside this package should only depend on the exported methods
// (New, RegisterWorker, Start, Submit, Cancel, Status, StatsSnapshot,
// Drain, Shutdown) plus the Worker/EventPublisher interfaces; taskRecord
// and classQueue are internal and may change shape freely.
package scheduler
