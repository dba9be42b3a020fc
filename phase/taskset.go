// Package phase implements one phase of a job — map or reduce — as a
// bounded-concurrency dispatch loop: task-set construction, per-partition
// failure tracking, result collection, and the PhaseRunner dispatch loop
// itself.
package phase

import (
	"errors"
	"strings"

	"github.com/gilessbrown/disco/job"
	"github.com/gilessbrown/disco/locality"
	"github.com/gilessbrown/disco/ports"
)

// ErrRedundantInputs is returned by ReduceTaskSet when any input carries
// more than one alternative URI; the reduce phase has no use for replicas
// since it fetches every input regardless.
var ErrRedundantInputs = errors.New("reduce doesn't support redundant inputs")

// Partition is one unit of work in a phase: a dense, position-assigned id
// and the ordered list of interchangeable input variants a task for it may
// consume.
type Partition struct {
	ID       int
	Variants []ports.Variant
}

// TaskSet is the immutable enumeration of partitions for one phase, built
// once from a job's inputs before the phase starts.
type TaskSet []Partition

// MapTaskSet builds a TaskSet for the map phase: one partition per input,
// preserving input position as partition id, and one variant per replica
// URI (a singleton InputSpec becomes a one-element variant list).
func MapTaskSet(inputs []job.InputSpec) TaskSet {
	ts := make(TaskSet, len(inputs))
	for i, in := range inputs {
		uris := in.URIs()
		variants := make([]ports.Variant, len(uris))
		for j, u := range uris {
			host, _ := locality.Resolve(u)
			variants[j] = ports.Variant{URI: u, PrefHost: host}
		}
		ts[i] = Partition{ID: i, Variants: variants}
	}
	return ts
}

// ReduceTaskSet builds a TaskSet for the reduce phase: one partition per
// input, each with a single synthetic variant whose URI is the
// space-joined, quoted concatenation of ALL inputs (every reduce task reads
// every map output) and whose locality hint is that of its own input
// (best-effort only). It rejects the task set outright if any input is a
// replica list.
func ReduceTaskSet(inputs []job.InputSpec) (TaskSet, error) {
	for _, in := range inputs {
		if in.IsReplicated() {
			return nil, ErrRedundantInputs
		}
	}

	uris := make([]string, len(inputs))
	for i, in := range inputs {
		if len(in.URIs()) == 0 {
			uris[i] = ""
			continue
		}
		uris[i] = in.URIs()[0]
	}
	synthetic := quoteJoin(uris)

	ts := make(TaskSet, len(inputs))
	for i, in := range inputs {
		var host string
		if len(in.URIs()) > 0 {
			host, _ = locality.Resolve(in.URIs()[0])
		}
		ts[i] = Partition{ID: i, Variants: []ports.Variant{{URI: synthetic, PrefHost: host}}}
	}
	return ts, nil
}

// quoteJoin renders ["u0", "u1", ...] as `'u0' 'u1' ... `, the wire format
// a reduce task splits on its single quotes to recover the list of map
// outputs it must fetch.
func quoteJoin(uris []string) string {
	var b strings.Builder
	for _, u := range uris {
		b.WriteByte('\'')
		b.WriteString(u)
		b.WriteString("' ")
	}
	return b.String()
}
