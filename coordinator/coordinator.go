// Package coordinator implements the per-job lifecycle: it acknowledges
// startup to its spawning caller, drives the map phase then (optionally)
// the reduce phase through phase.Runner, triggers best-effort cleanup, and
// emits the terminal READY event — or unwinds on the first terminal fault.
package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gilessbrown/disco/clog"
	"github.com/gilessbrown/disco/job"
	"github.com/gilessbrown/disco/phase"
	"github.com/gilessbrown/disco/ports"
)

// Coordinator drives a single job from start to READY (or ABORTED). It is
// single-use: construct one per job with New.
type Coordinator struct {
	*clog.CLogger
	id      string
	worker  ports.WorkerClient
	events  ports.EventClient
	oob     ports.OobClient
	gc      ports.GcClient
	config  phase.Config
	metrics phase.Metrics
}

// New creates a Coordinator ready for use with Start.
func New(worker ports.WorkerClient, events ports.EventClient, oob ports.OobClient, gc ports.GcClient, config phase.Config, metrics phase.Metrics) *Coordinator {
	if metrics == nil {
		metrics = phase.NopMetrics
	}
	id := uuid.NewString()
	return &Coordinator{
		CLogger: clog.New("coordinator %s ", id[:8]),
		id:      id,
		worker:  worker,
		events:  events,
		oob:     oob,
		gc:      gc,
		config:  config,
		metrics: metrics,
	}
}

// Start runs desc to completion. acked, if non-nil, is closed as soon as
// the coordinator has come up and is about to begin phase work — the
// spawning caller (the out-of-scope ingress) should treat a missing close
// within its own bound (~5s) as a startup failure; Start itself runs to
// completion independently of that caller.
//
// Start returns nil on success (READY emitted), *phase.LoggedError for a
// fault already described to the event sink, or another error for an
// unexpected failure.
func (c *Coordinator) Start(ctx context.Context, desc job.Descriptor, acked chan<- struct{}) error {
	c.Printf("%s", "Job coordinator starts")
	c.events.Emit(desc.Name, ports.TagStart, "Job coordinator starts (id=%s)", c.id)
	c.events.Emit(desc.Name, ports.TagJobData, "Starting job nMap=%d nRed=%d doReduce=%t inputs=%v", desc.NMap, desc.NRed, desc.DoReduce, desc.Inputs)

	if acked != nil {
		close(acked)
	}

	redInputs, mapRan, err := c.runMapPhase(ctx, desc)
	if err != nil {
		return c.abort(desc.Name, err)
	}

	finalInputs := redInputs
	reduceRan := false
	if desc.DoReduce {
		results, err := c.runReducePhase(ctx, desc, redInputs)
		if err != nil {
			return c.abort(desc.Name, err)
		}
		finalInputs = results
		reduceRan = true
	}

	if mapRan && reduceRan {
		c.gc.RemoveMapResults(redInputs)
	}

	c.events.Emit(desc.Name, ports.TagReady, "READY %v", uris(finalInputs))
	if desc.Output != nil {
		fmt.Fprintf(desc.Output, "Computation %s ready: %v\n", desc.Name, uris(finalInputs))
	}
	return c.events.Flush(desc.Name)
}

// runMapPhase runs the map phase if desc.NMap > 0, returning the inputs to
// feed into the reduce phase (the map phase's result set if it ran,
// otherwise desc.Inputs unchanged — see SPEC_FULL §E on the input
// preservation open question) and whether the map phase actually ran.
func (c *Coordinator) runMapPhase(ctx context.Context, desc job.Descriptor) ([]job.InputSpec, bool, error) {
	if desc.NMap <= 0 {
		return desc.Inputs, false, nil
	}

	c.events.Emit(desc.Name, ports.TagInfo, "Map phase")
	runner := &phase.Runner{Worker: c.worker, Events: c.events, Oob: c.oob, Config: c.config, Metrics: c.metrics}
	bag, err := runner.Run(ctx, phase.MapTaskSet(desc.Inputs), "map", desc.Name, desc.NMap)
	if err != nil {
		return nil, true, err
	}
	c.events.Emit(desc.Name, ports.TagInfo, "Map phase done")

	out := make([]job.InputSpec, 0, bag.Len())
	for _, u := range bag.URIs() {
		out = append(out, job.Single(u))
	}
	return out, true, nil
}

// runReducePhase runs the reduce phase over redInputs, returning the final
// output set.
func (c *Coordinator) runReducePhase(ctx context.Context, desc job.Descriptor, redInputs []job.InputSpec) ([]job.InputSpec, error) {
	c.events.Emit(desc.Name, ports.TagInfo, "Starting reduce phase")

	taskSet, err := phase.ReduceTaskSet(redInputs)
	if err != nil {
		c.events.Emit(desc.Name, ports.TagError, "ERROR: Reduce doesn't support redundant inputs")
		return nil, phase.NewUnknownError("building reduce task set: %w", err)
	}

	runner := &phase.Runner{Worker: c.worker, Events: c.events, Oob: c.oob, Config: c.config, Metrics: c.metrics}
	bag, err := runner.Run(ctx, taskSet, "reduce", desc.Name, desc.NRed)
	if err != nil {
		return nil, err
	}

	out := make([]job.InputSpec, 0, bag.Len())
	for _, u := range bag.URIs() {
		out = append(out, job.Single(u))
	}
	return out, nil
}

// abort unwinds the job on a terminal fault: emit a descriptive event, kill
// outstanding tasks, flush the event log, and return the fault, tagged by
// kind per §7's propagation policy.
func (c *Coordinator) abort(jobName string, cause error) error {
	jlog := c.WithJob(jobName)

	var logged *phase.LoggedError
	if errors.As(cause, &logged) {
		c.events.Emit(jobName, ports.TagError, "Job terminated due to the previous errors")
	} else {
		c.events.Emit(jobName, ports.TagError, "Job coordinator failed unexpectedly: %v", cause)
	}

	killCtx := context.Background()
	if err := c.worker.KillJob(killCtx, jobName); err != nil {
		jlog.Errorf("Failed killing job after abort: %v", err)
	}
	if err := c.events.Flush(jobName); err != nil {
		jlog.Errorf("Failed flushing events after abort: %v", err)
	}
	return cause
}

func uris(inputs []job.InputSpec) []string {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		out[i] = in.String()
	}
	return out
}
