package phase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gilessbrown/disco/internal/fakeports"
	"github.com/gilessbrown/disco/ports"
)

func taskSet(n int) TaskSet {
	ts := make(TaskSet, n)
	for i := 0; i < n; i++ {
		ts[i] = Partition{ID: i, Variants: []ports.Variant{{URI: "disco://node/in-" + string(rune('a'+i))}}}
	}
	return ts
}

func newRunner(worker *fakeports.Worker, events *fakeports.Events, oob *fakeports.Oob, cfg Config) *Runner {
	return &Runner{Worker: worker, Events: events, Oob: oob, Config: cfg}
}

func TestRunHappyPath(t *testing.T) {
	script := fakeports.Script{
		0: {ports.Ok{PartitionID: 0, Node: "n1", OutputURI: "out-0"}},
		1: {ports.Ok{PartitionID: 1, Node: "n2", OutputURI: "out-1"}},
		2: {ports.Ok{PartitionID: 2, Node: "n3", OutputURI: "out-2"}},
	}
	worker := fakeports.NewWorker(script)
	r := newRunner(worker, fakeports.NewEvents(), fakeports.NewOob(), DefaultConfig())

	bag, err := r.Run(context.Background(), taskSet(3), "map", "job-1", 2)
	require.NoError(t, err)
	require.Equal(t, 3, bag.Len())
	require.Len(t, worker.Submitted(), 3)
}

func TestRunBoundedFanOut(t *testing.T) {
	script := fakeports.Script{
		0: {ports.Ok{PartitionID: 0, Node: "n1", OutputURI: "out-0"}},
		1: {ports.Ok{PartitionID: 1, Node: "n2", OutputURI: "out-1"}},
		2: {ports.Ok{PartitionID: 2, Node: "n3", OutputURI: "out-2"}},
		3: {ports.Ok{PartitionID: 3, Node: "n4", OutputURI: "out-3"}},
	}
	worker := fakeports.NewWorker(script)
	r := newRunner(worker, fakeports.NewEvents(), fakeports.NewOob(), DefaultConfig())

	bag, err := r.Run(context.Background(), taskSet(4), "map", "job-1", 1)
	require.NoError(t, err)
	require.Equal(t, 4, bag.Len())
}

func TestRunDataErrorRetries(t *testing.T) {
	script := fakeports.Script{
		0: {
			ports.DataError{PartitionID: 0, Node: "n1", FailedURI: "disco://node/in-a"},
			ports.Ok{PartitionID: 0, Node: "n2", OutputURI: "out-0"},
		},
	}
	worker := fakeports.NewWorker(script)
	r := newRunner(worker, fakeports.NewEvents(), fakeports.NewOob(), DefaultConfig())

	bag, err := r.Run(context.Background(), taskSet(1), "map", "job-1", 1)
	require.NoError(t, err)
	require.Equal(t, 1, bag.Len())
	require.Len(t, worker.Submitted(), 2, "initial submit plus one retry")
}

func TestRunAbortsOnFailureRateExceeded(t *testing.T) {
	dataErr := ports.DataError{PartitionID: 0, Node: "n1", FailedURI: "disco://node/in-a"}
	script := fakeports.Script{
		0: {dataErr, dataErr, dataErr, dataErr, dataErr},
	}
	worker := fakeports.NewWorker(script)
	r := newRunner(worker, fakeports.NewEvents(), fakeports.NewOob(), Config{MaxFailureRate: 3})

	_, err := r.Run(context.Background(), taskSet(1), "map", "job-1", 1)
	require.Error(t, err)
	var logged *LoggedError
	require.ErrorAs(t, err, &logged)
	// MaxFailureRate=3 tolerates 4 failures (initial submit plus 4 retries);
	// the 5th DataError observed triggers abort without a further resubmit.
	require.Len(t, worker.Submitted(), 5)
}

func TestRunTerminatesOnWorkerCrashed(t *testing.T) {
	script := fakeports.Script{
		0: {ports.WorkerCrashed{PartitionID: 0, Node: "n1", Reason: "oom"}},
	}
	worker := fakeports.NewWorker(script)
	r := newRunner(worker, fakeports.NewEvents(), fakeports.NewOob(), DefaultConfig())

	_, err := r.Run(context.Background(), taskSet(1), "map", "job-1", 1)
	var logged *LoggedError
	require.ErrorAs(t, err, &logged)
}

func TestRunTerminatesOnUnknownOutcome(t *testing.T) {
	script := fakeports.Script{
		0: {ports.Unknown{Payload: []byte("garbled")}},
	}
	worker := fakeports.NewWorker(script)
	r := newRunner(worker, fakeports.NewEvents(), fakeports.NewOob(), DefaultConfig())

	_, err := r.Run(context.Background(), taskSet(1), "map", "job-1", 1)
	var unknown *UnknownError
	require.ErrorAs(t, err, &unknown)
}

func TestRunForwardsOobKeys(t *testing.T) {
	script := fakeports.Script{
		0: {ports.Ok{PartitionID: 0, Node: "n1", OutputURI: "out-0", OobKeys: []byte("k=v")}},
	}
	worker := fakeports.NewWorker(script)
	oob := fakeports.NewOob()
	r := newRunner(worker, fakeports.NewEvents(), oob, DefaultConfig())

	_, err := r.Run(context.Background(), taskSet(1), "map", "job-1", 1)
	require.NoError(t, err)

	call, ok := oob.Next(time.Second)
	require.True(t, ok, "Oob.Store was not called within the deadline")
	require.Equal(t, "n1", call.Node)
	require.Equal(t, "k=v", string(call.Keys))
}
