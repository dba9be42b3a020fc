package coordinator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gilessbrown/disco/internal/fakeports"
	"github.com/gilessbrown/disco/job"
	"github.com/gilessbrown/disco/phase"
	"github.com/gilessbrown/disco/ports"
)

func TestStartSkipsMapPhaseWhenNMapIsZero(t *testing.T) {
	script := fakeports.Script{
		0: {ports.Ok{PartitionID: 0, Node: "n1", OutputURI: "disco://node/reduced-0"}},
	}
	worker := fakeports.NewWorker(script)
	events := fakeports.NewEvents()
	oob := fakeports.NewOob()
	gc := fakeports.NewGc()

	c := New(worker, events, oob, gc, phase.DefaultConfig(), nil)
	desc := job.Descriptor{
		Name:     "job-1",
		Inputs:   []job.InputSpec{job.Single("disco://node/raw-0")},
		NMap:     0,
		NRed:     1,
		DoReduce: true,
	}

	err := c.Start(context.Background(), desc, nil)
	require.NoError(t, err)
	require.Empty(t, gc.Calls(), "gc should not run when the map phase never ran")
	require.Len(t, worker.Submitted(), 1, "reduce only")
}

func TestStartSkipsGcWhenReducePhaseNeverRan(t *testing.T) {
	script := fakeports.Script{
		0: {ports.Ok{PartitionID: 0, Node: "n1", OutputURI: "disco://node/mapped-0"}},
	}
	worker := fakeports.NewWorker(script)
	events := fakeports.NewEvents()
	oob := fakeports.NewOob()
	gc := fakeports.NewGc()

	c := New(worker, events, oob, gc, phase.DefaultConfig(), nil)
	desc := job.Descriptor{
		Name:     "job-1",
		Inputs:   []job.InputSpec{job.Single("disco://node/raw-0")},
		NMap:     1,
		NRed:     1,
		DoReduce: false,
	}

	err := c.Start(context.Background(), desc, nil)
	require.NoError(t, err)
	require.Empty(t, gc.Calls(), "gc should not run when reduce never ran")
}

func TestStartClosesAckedBeforeRunning(t *testing.T) {
	worker := fakeports.NewWorker(fakeports.Script{})
	events := fakeports.NewEvents()
	oob := fakeports.NewOob()
	gc := fakeports.NewGc()

	c := New(worker, events, oob, gc, phase.DefaultConfig(), nil)
	desc := job.Descriptor{Name: "job-1", Inputs: nil, NMap: 0, NRed: 0, DoReduce: false}

	acked := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background(), desc, acked) }()

	<-acked
	require.NoError(t, <-done)
}

func TestStartAbortsOnRedundantReduceInputs(t *testing.T) {
	worker := fakeports.NewWorker(fakeports.Script{})
	events := fakeports.NewEvents()
	oob := fakeports.NewOob()
	gc := fakeports.NewGc()

	c := New(worker, events, oob, gc, phase.DefaultConfig(), nil)
	desc := job.Descriptor{
		Name: "job-1",
		Inputs: []job.InputSpec{
			job.Replicated("disco://node/a", "dir://node/a"),
		},
		NMap:     0,
		NRed:     1,
		DoReduce: true,
	}

	err := c.Start(context.Background(), desc, nil)
	require.Error(t, err)
	require.Equal(t, []string{"job-1"}, worker.Killed())
	require.Contains(t, events.For("job-1"), "[error] ERROR: Reduce doesn't support redundant inputs")
}

func TestStartEmitsReadyWithFinalOutputs(t *testing.T) {
	worker := fakeports.NewWorker(fakeports.Script{})
	events := fakeports.NewEvents()
	oob := fakeports.NewOob()
	gc := fakeports.NewGc()

	c := New(worker, events, oob, gc, phase.DefaultConfig(), nil)
	desc := job.Descriptor{
		Name:     "job-1",
		Inputs:   []job.InputSpec{job.Single("disco://node/a")},
		NMap:     0,
		NRed:     0,
		DoReduce: false,
	}

	err := c.Start(context.Background(), desc, nil)
	require.NoError(t, err)
	require.Contains(t, events.For("job-1"), "[ready] READY [disco://node/a]")
}
