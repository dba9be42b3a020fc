// Package ports defines the contracts between the job coordinator core and
// its external collaborators: the worker dispatcher (WorkerClient), the
// event sink (EventClient), the out-of-band key/value store (OobClient),
// and the garbage collector (GcClient). Concrete implementations of these
// contracts — a real gRPC-backed WorkerClient, a file-backed EventClient —
// live under transport/; the core (phase, coordinator) only ever depends on
// these interfaces.
package ports

import (
	"context"

	"github.com/gilessbrown/disco/job"
)

// Variant is one alternative input for a partition: a URI and its
// best-effort locality hint (empty if none could be derived).
type Variant struct {
	URI      string
	PrefHost string
}

// SubmitRequest is the information a coordinator hands the WorkerClient to
// dispatch one task.
type SubmitRequest struct {
	JobName     string
	PartitionID int
	PhaseTag    string // "map" or "reduce"
	Blacklist   []string
	Variants    []Variant
}

// WorkerClient is the coordinator's view of the external worker dispatcher
// (WorkerPool). Submit requests that a task be assigned to some worker not
// in Blacklist; Outcomes is the single shared inbox on which the dispatcher
// posts back exactly one TaskOutcome per successful Submit (and, on worker
// death, a WorkerCrashed outcome it did not otherwise expect). KillJob asks
// the dispatcher to stop posting new outcomes for a terminated job.
type WorkerClient interface {
	Submit(ctx context.Context, req SubmitRequest) error
	Outcomes() <-chan Outcome
	KillJob(ctx context.Context, jobName string) error
}

// Outcome is the tagged union of messages a WorkerClient may deliver for a
// dispatched task. Exactly one of the concrete types below satisfies this
// interface; a PhaseRunner type-switches on it.
type Outcome interface {
	outcome()
}

// Ok reports that a task completed successfully.
type Ok struct {
	PartitionID int
	Node        string
	OutputURI   string
	OobKeys     []byte // side-channel output, may be nil
}

func (Ok) outcome() {}

// DataError reports a retriable fault implicating a specific input URI on a
// specific node.
type DataError struct {
	PartitionID int
	Node        string
	FailedURI   string
}

func (DataError) outcome() {}

// JobError reports a worker-side fatal error already logged by the worker
// itself; terminal for the job.
type JobError struct {
	PartitionID int
	Node        string
}

func (JobError) outcome() {}

// WorkerCrashed reports that the worker process performing a task died;
// terminal for the job.
type WorkerCrashed struct {
	PartitionID int
	Node        string
	Reason      string
}

func (WorkerCrashed) outcome() {}

// MasterError reports that the dispatcher itself aborted the job; terminal
// and global (not tied to one partition).
type MasterError struct {
	Reason string
}

func (MasterError) outcome() {}

// Unknown wraps any outcome message that doesn't fit the other arms;
// terminal.
type Unknown struct {
	Payload []byte
}

func (Unknown) outcome() {}

// EventTag classifies an emitted event for consumers polling the event
// sink.
type EventTag string

const (
	TagStart     EventTag = "start"
	TagJobData   EventTag = "job_data"
	TagTaskReady EventTag = "task_ready"
	TagReady     EventTag = "ready"
	TagError     EventTag = "error"
	TagInfo      EventTag = "info"
)

// EventClient is the coordinator's view of the external event sink, which
// records named events per job for later polling.
type EventClient interface {
	// Emit records one event for jobName. Implementations must not block
	// the caller on network or disk I/O beyond buffering.
	Emit(jobName string, tag EventTag, format string, args ...any)

	// Flush finalizes the event log for a terminated job.
	Flush(jobName string) error
}

// OobClient is the coordinator's view of the external out-of-band
// key/value store. Store is best-effort, fire-and-forget: its failure must
// never affect job outcome.
type OobClient interface {
	Store(jobName, node string, oobKeys []byte)
}

// GcClient is the coordinator's view of the external garbage collector.
// RemoveMapResults is best-effort: its failure must never affect job
// outcome.
type GcClient interface {
	RemoveMapResults(reduceInputs []job.InputSpec)
}
