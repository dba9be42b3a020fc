// Package registry manages the predefined map/reduce computations a worker
// pool process (cmd/jobworkerd) can execute by name, as a lookup table keyed
// by computation name.
package registry

import (
	"io"
	"slices"
)

// Computation implements one named map/reduce job. Map transforms the raw
// bytes of a single input into an encoded partial result. Reduce merges the
// partial results named by every map output belonging to one job into the
// job's final result.
type Computation interface {
	// Name uniquely identifies the computation, as referenced by
	// job.Descriptor.Name.
	Name() string

	// Description is a short one-line summary of the computation.
	Description() string

	// Map reads one input in full and writes its partial result to w.
	Map(r io.Reader, w io.Writer) error

	// Reduce reads every partial result named in a reduce partition's
	// synthetic input (already split and opened by the caller) and writes
	// the job's final, merged result to w.
	Reduce(parts []io.Reader, w io.Writer) error
}

// Registry is a lookup table of predefined computations, keyed by name.
type Registry struct {
	computations map[string]Computation
}

// NewRegistry returns a Registry populated with every computation this
// package defines.
func NewRegistry() *Registry {
	r := &Registry{computations: make(map[string]Computation)}
	r.Register(&WordCount{})
	r.Register(&LineCount{})
	return r
}

// Register adds or replaces the computation under its own Name().
func (r *Registry) Register(c Computation) {
	r.computations[c.Name()] = c
}

// ByName returns the computation registered under name, or nil.
func (r *Registry) ByName(name string) Computation {
	return r.computations[name]
}

// Names returns every registered computation name, sorted ascending.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.computations))
	for name := range r.computations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
