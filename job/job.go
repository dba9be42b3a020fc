// Package job defines the data model the coordinator consumes: the parsed,
// immutable job descriptor delivered by the (out-of-scope) ingress, and the
// input specifications it carries.
package job

import (
	"fmt"
	"io"
)

// InputSpec is either a single input URI or a non-empty ordered list of
// alternative URIs (redundant replicas of the same logical input). The map
// phase accepts both forms; the reduce phase rejects lists.
type InputSpec struct {
	uris []string
}

// Single builds an InputSpec wrapping exactly one URI.
func Single(uri string) InputSpec {
	return InputSpec{uris: []string{uri}}
}

// Replicated builds an InputSpec from two or more alternative URIs for the
// same logical input. Panics if fewer than two URIs are given — use Single
// for a one-element spec.
func Replicated(uris ...string) InputSpec {
	if len(uris) < 2 {
		panic("job: Replicated requires at least two alternative URIs")
	}
	return InputSpec{uris: append([]string(nil), uris...)}
}

// URIs returns the ordered list of alternative URIs for this input. Never
// empty.
func (s InputSpec) URIs() []string {
	return s.uris
}

// IsReplicated reports whether this input carries more than one alternative
// URI.
func (s InputSpec) IsReplicated() bool {
	return len(s.uris) > 1
}

func (s InputSpec) String() string {
	if !s.IsReplicated() {
		return s.uris[0]
	}
	return fmt.Sprintf("%v", s.uris)
}

// Descriptor is the immutable, per-job description the coordinator is
// handed once at startup. name, inputs, nMap, nRed and doReduce are fixed
// for the lifetime of the job; uniqueness of name is enforced by the
// out-of-scope ingress before the coordinator ever starts.
type Descriptor struct {
	// Name uniquely identifies the job. Must not contain '/' or '.'.
	// Uniqueness is enforced externally.
	Name string

	// Inputs is the ordered sequence of input specifications. Position in
	// this slice is the partition id assigned during task-set construction.
	Inputs []InputSpec

	// NMap is the maximum number of concurrent map tasks. Zero disables the
	// map phase: Inputs flow straight into the reduce phase unchanged.
	NMap int

	// NRed is the maximum number of concurrent reduce tasks. Must be
	// positive if DoReduce is true.
	NRed int

	// DoReduce indicates whether the reduce phase runs at all. If false,
	// map outputs (or, if NMap is zero, the raw Inputs) are the final
	// result.
	DoReduce bool

	// Output is the sink the coordinator's final READY payload is
	// additionally mirrored to for local CLI use, e.g. os.Stdout. May be
	// nil.
	Output io.Writer
}
