package phase

import (
	"context"
	"time"

	"github.com/gilessbrown/disco/ports"
)

// Config bounds a PhaseRunner's retry policy.
type Config struct {
	// MaxFailureRate bounds the per-partition blacklist size. The check is
	// performed at receipt of each DataError, before the new node is
	// appended: if the blacklist already exceeds MaxFailureRate, the job
	// aborts. A default of 3 therefore tolerates 4 failures before abort
	// (the 5th DataError observed triggers it) — this is preserved exactly
	// as the upstream behavior specifies; it is not an off-by-one bug to
	// "fix".
	MaxFailureRate int
}

// DefaultConfig returns the default phase configuration (MaxFailureRate 3).
func DefaultConfig() Config {
	return Config{MaxFailureRate: 3}
}

// Metrics receives observations from a Runner as it executes. Implemented
// by *metrics.Collector; a nil Metrics is treated as NopMetrics.
type Metrics interface {
	ObserveSubmit(phaseTag string)
	ObserveRetry(phaseTag string)
	ObserveBlacklist(phaseTag string)
	ObserveAbort(phaseTag string)
	ObservePhaseDuration(phaseTag string, seconds float64)
}

type nopMetrics struct{}

func (nopMetrics) ObserveSubmit(string)               {}
func (nopMetrics) ObserveRetry(string)                {}
func (nopMetrics) ObserveBlacklist(string)             {}
func (nopMetrics) ObserveAbort(string)                {}
func (nopMetrics) ObservePhaseDuration(string, float64) {}

// NopMetrics is a Metrics implementation that discards every observation.
var NopMetrics Metrics = nopMetrics{}

// Runner executes one phase (map or reduce) of one job: a bounded-fan-out
// dispatch loop over a TaskSet, against the given WorkerClient, reporting
// task-ready and error events to the given EventClient, and forwarding
// out-of-band keys to the given OobClient.
//
// A Runner is single-use: construct one per phase invocation.
type Runner struct {
	Worker  ports.WorkerClient
	Events  ports.EventClient
	Oob     ports.OobClient
	Config  Config
	Metrics Metrics
}

// Run dispatches every partition in partitions, retrying on retriable data
// faults and aborting on the first terminal fault, never exceeding max
// concurrently in-flight tasks. It returns the set of output URIs once
// every partition has contributed exactly one, or raises a *LoggedError /
// *UnknownError.
func (r *Runner) Run(ctx context.Context, partitions TaskSet, phaseTag, jobName string, max int) (*ResultBag, error) {
	metricsSink := r.Metrics
	if metricsSink == nil {
		metricsSink = NopMetrics
	}

	table := NewFailureTable(partitions)
	bag := NewResultBag()

	pending := make([]int, len(partitions))
	for i, p := range partitions {
		pending[i] = p.ID
	}

	inFlight := 0
	outcomes := r.Worker.Outcomes()

	submit := func(partitionID int) error {
		blacklist, remaining := table.Snapshot(partitionID)
		return r.Worker.Submit(ctx, ports.SubmitRequest{
			JobName:     jobName,
			PartitionID: partitionID,
			PhaseTag:    phaseTag,
			Blacklist:   blacklist,
			Variants:    remaining,
		})
	}

	start := time.Now()
	defer func() {
		metricsSink.ObservePhaseDuration(phaseTag, time.Since(start).Seconds())
	}()

	for {
		for len(pending) > 0 && inFlight < max {
			partitionID := pending[0]
			pending = pending[1:]
			if err := submit(partitionID); err != nil {
				return nil, newUnknownError("submitting %s:%d: %w", phaseTag, partitionID, err)
			}
			inFlight++
			metricsSink.ObserveSubmit(phaseTag)
		}

		if inFlight == 0 && len(pending) == 0 {
			return bag, nil
		}
		if inFlight == 0 {
			// Pending is non-empty but max concurrency admits no dispatch
			// (max <= 0): nothing could ever be waited on.
			return nil, newLoggedError("Nothing to wait")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case oc, ok := <-outcomes:
			if !ok {
				return nil, newLoggedError("worker outcome channel closed unexpectedly")
			}

			switch o := oc.(type) {
			case ports.Ok:
				r.Events.Emit(jobName, ports.TagTaskReady, "Received results from %s:%d @ %s.", phaseTag, o.PartitionID, o.Node)
				if len(o.OobKeys) > 0 {
					go r.Oob.Store(jobName, o.Node, o.OobKeys)
				}
				bag.Add(o.OutputURI)
				inFlight--

			case ports.DataError:
				size := table.BlacklistSize(o.PartitionID)
				if size > r.Config.MaxFailureRate {
					r.Events.Emit(jobName, ports.TagError, "ERROR: %s:%d failed %d times. Aborting job.", phaseTag, o.PartitionID, size)
					metricsSink.ObserveAbort(phaseTag)
					return nil, newLoggedError("%s:%d failed %d times", phaseTag, o.PartitionID, size)
				}
				table.OnDataError(o.PartitionID, o.FailedURI, o.Node)
				metricsSink.ObserveBlacklist(phaseTag)
				metricsSink.ObserveRetry(phaseTag)
				if err := submit(o.PartitionID); err != nil {
					return nil, newUnknownError("resubmitting %s:%d: %w", phaseTag, o.PartitionID, err)
				}
				// inFlight unchanged: one task ended, one started.

			case ports.JobError:
				r.Events.Emit(jobName, ports.TagError, "ERROR: %s:%d failed on %s", phaseTag, o.PartitionID, o.Node)
				return nil, newLoggedError("%s:%d failed on %s", phaseTag, o.PartitionID, o.Node)

			case ports.WorkerCrashed:
				r.Events.Emit(jobName, ports.TagError, "ERROR: Worker crashed in %s:%d @ %s: %s", phaseTag, o.PartitionID, o.Node, o.Reason)
				return nil, newLoggedError("worker crashed in %s:%d @ %s: %s", phaseTag, o.PartitionID, o.Node, o.Reason)

			case ports.MasterError:
				r.Events.Emit(jobName, ports.TagError, "ERROR: Master terminated the job: %s", o.Reason)
				return nil, newLoggedError("master terminated the job: %s", o.Reason)

			case ports.Unknown:
				r.Events.Emit(jobName, ports.TagError, "ERROR: Received an unknown error: %s", string(o.Payload))
				return nil, newUnknownError("received an unknown error: %s", string(o.Payload))

			default:
				return nil, newUnknownError("received an unrecognized outcome type %T", oc)
			}
		}
	}
}
