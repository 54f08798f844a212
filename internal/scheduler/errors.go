package scheduler

// invalidArgumentError signals a malformed submission: an unknown class
// or priority. A nil payload is not treated as malformed — see DESIGN.md's
// Open Question decisions for why — so Submit never returns this for a
// nil payload alone (spec §7 "InvalidArgument").
type invalidArgumentError struct{ reason string }

func (e invalidArgumentError) Error() string { return "invalid argument: " + e.reason }

// IsInvalidArgument reports whether err was returned for a malformed Submit call.
func IsInvalidArgument(err error) bool {
	_, ok := err.(invalidArgumentError)
	return ok
}

// notFoundError signals an unknown or already-purged task id.
type notFoundError struct{ id string }

func (e notFoundError) Error() string { return "task not found: " + e.id }

// IsNotFound reports whether err indicates the id is unknown.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// tooLateError signals Cancel arrived after dispatch started running the task.
type tooLateError struct{ id string }

func (e tooLateError) Error() string { return "too late to cancel: " + e.id }

// IsTooLate reports whether err indicates the task was already Running.
func IsTooLate(err error) bool {
	_, ok := err.(tooLateError)
	return ok
}

// alreadyFinishedError signals Cancel arrived after a terminal status was reached.
type alreadyFinishedError struct{ id string }

func (e alreadyFinishedError) Error() string { return "task already finished: " + e.id }

// IsAlreadyFinished reports whether err indicates the task already reached a terminal state.
func IsAlreadyFinished(err error) bool {
	_, ok := err.(alreadyFinishedError)
	return ok
}

// alreadyRegisteredError signals a worker id collision at registration.
type alreadyRegisteredError struct{ id string }

func (e alreadyRegisteredError) Error() string { return "worker already registered: " + e.id }

// IsAlreadyRegistered reports whether err indicates a worker id conflict.
func IsAlreadyRegistered(err error) bool {
	_, ok := err.(alreadyRegisteredError)
	return ok
}

// workerError wraps a failure reported by a worker's Execute call. The
// task's err string carries workerErr.Error() verbatim (spec §7 "WorkerError").
type workerError struct{ msg string }

func (e workerError) Error() string { return e.msg }

// ErrWorker wraps msg as a worker-reported failure.
func ErrWorker(msg string) error { return workerError{msg: msg} }

// IsWorkerError reports whether err originated from a worker's Execute call.
func IsWorkerError(err error) bool {
	_, ok := err.(workerError)
	return ok
}

// shutdownInProgressError signals a Submit call after Shutdown began.
type shutdownInProgressError struct{}

func (e shutdownInProgressError) Error() string { return "shutdown in progress" }

// IsShutdownInProgress reports whether err indicates the scheduler is shutting down.
func IsShutdownInProgress(err error) bool {
	_, ok := err.(shutdownInProgressError)
	return ok
}
