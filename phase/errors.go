package phase

import "fmt"

// LoggedError is a terminal fault already described to the event sink
// before being returned: a partition's blacklist exceeded the configured
// failure rate, a worker-side JobError/WorkerCrashed/MasterError outcome
// was received, or the dispatch loop detected a protocol violation (no
// outstanding work to wait on).
type LoggedError struct {
	err error
}

func newLoggedError(format string, a ...any) *LoggedError {
	return &LoggedError{err: fmt.Errorf(format, a...)}
}

// NewLoggedError builds a *LoggedError from a cause already described to
// the event sink. Exported for use by callers outside package phase (e.g.
// coordinator) that need to surface the same error kind.
func NewLoggedError(format string, a ...any) *LoggedError {
	return newLoggedError(format, a...)
}

func (e *LoggedError) Error() string { return e.err.Error() }
func (e *LoggedError) Unwrap() error { return e.err }

// UnknownError is a terminal fault whose cause does not fit the tagged
// outcome union at all (ports.Unknown) or whose cause is a transport
// failure unrelated to the domain-level data-fault taxonomy (e.g. a
// WorkerClient.Submit call itself failing).
type UnknownError struct {
	err error
}

func newUnknownError(format string, a ...any) *UnknownError {
	return &UnknownError{err: fmt.Errorf(format, a...)}
}

// NewUnknownError builds an *UnknownError from an unexpected cause.
// Exported for use by callers outside package phase (e.g. coordinator).
func NewUnknownError(format string, a ...any) *UnknownError {
	return newUnknownError(format, a...)
}

func (e *UnknownError) Error() string { return e.err.Error() }
func (e *UnknownError) Unwrap() error { return e.err }
