package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gilessbrown/disco/clog"
	"github.com/gilessbrown/disco/ports"
	"github.com/gilessbrown/disco/registry"
)

// engine is this process's local stand-in for a worker pool: it executes
// every submitted task inline, in its own goroutine, as "node" — there is
// only ever one node in this demo daemon, so blacklisting never actually
// routes work elsewhere, but the submit/outcome protocol is exactly what a
// real multi-node pool would speak.
type engine struct {
	*clog.CLogger
	node  string
	store *store
	reg   *registry.Registry

	mu     sync.Mutex
	killed map[string]bool
	sink   chan<- ports.Outcome
}

func newEngine(node string, st *store, reg *registry.Registry) *engine {
	return &engine{
		CLogger: clog.New("jobworkerd %s ", node),
		node:    node,
		store:   st,
		reg:     reg,
		killed:  make(map[string]bool),
	}
}

func (e *engine) HandleSubmit(ctx context.Context, req ports.SubmitRequest) error {
	e.mu.Lock()
	killed := e.killed[req.JobName]
	e.mu.Unlock()
	if killed {
		return nil
	}

	go e.run(req)
	return nil
}

func (e *engine) HandleKillJob(ctx context.Context, jobName string) error {
	e.mu.Lock()
	e.killed[jobName] = true
	e.mu.Unlock()
	return nil
}

// Subscribe registers sink as the engine's sole outcome destination until
// ctx is done. Only one subscriber is supported at a time, matching the
// coordinator's single shared WorkerClient.Outcomes() channel.
func (e *engine) Subscribe(ctx context.Context, sink chan<- ports.Outcome, done chan<- struct{}) {
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()

	<-ctx.Done()

	e.mu.Lock()
	if e.sink == sink {
		e.sink = nil
	}
	e.mu.Unlock()
	close(done)
}

func (e *engine) post(o ports.Outcome) {
	e.mu.Lock()
	sink := e.sink
	e.mu.Unlock()
	if sink == nil {
		e.Errorf("Dropping outcome, no subscriber attached: %+v", o)
		return
	}
	sink <- o
}

func (e *engine) run(req ports.SubmitRequest) {
	cm := e.reg.ByName(req.JobName)
	if cm == nil {
		e.post(ports.JobError{PartitionID: req.PartitionID, Node: e.node})
		return
	}

	if len(req.Variants) == 0 {
		e.post(ports.MasterError{Reason: fmt.Sprintf("%s:%d submitted with no input variants", req.PhaseTag, req.PartitionID)})
		return
	}
	variant := req.Variants[len(req.Blacklist)%len(req.Variants)]

	var err error
	switch req.PhaseTag {
	case "map":
		err = e.runMap(cm, req, variant)
	case "reduce":
		err = e.runReduce(cm, req, variant)
	default:
		e.post(ports.Unknown{Payload: []byte("unrecognized phase tag " + req.PhaseTag)})
		return
	}
	if err != nil {
		e.Errorf("%s:%d failed: %v", req.PhaseTag, req.PartitionID, err)
	}
}

func (e *engine) runMap(cm registry.Computation, req ports.SubmitRequest, variant ports.Variant) error {
	in, err := e.store.open(variant.URI)
	if err != nil {
		e.post(ports.DataError{PartitionID: req.PartitionID, Node: e.node, FailedURI: variant.URI})
		return err
	}
	defer in.Close()

	out, outURI, err := e.store.create(req.JobName, req.PhaseTag, req.PartitionID)
	if err != nil {
		e.post(ports.JobError{PartitionID: req.PartitionID, Node: e.node})
		return err
	}
	defer out.Close()

	if err := cm.Map(in, out); err != nil {
		e.post(ports.JobError{PartitionID: req.PartitionID, Node: e.node})
		return err
	}

	e.post(ports.Ok{PartitionID: req.PartitionID, Node: e.node, OutputURI: outURI})
	return nil
}

func (e *engine) runReduce(cm registry.Computation, req ports.SubmitRequest, variant ports.Variant) error {
	uris := splitSynthetic(variant.URI)
	parts := make([]io.Reader, 0, len(uris))
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for _, u := range uris {
		f, err := e.store.open(u)
		if err != nil {
			e.post(ports.DataError{PartitionID: req.PartitionID, Node: e.node, FailedURI: u})
			return err
		}
		closers = append(closers, f)
		parts = append(parts, f)
	}

	out, outURI, err := e.store.create(req.JobName, req.PhaseTag, req.PartitionID)
	if err != nil {
		e.post(ports.JobError{PartitionID: req.PartitionID, Node: e.node})
		return err
	}
	defer out.Close()

	if err := cm.Reduce(parts, out); err != nil {
		e.post(ports.JobError{PartitionID: req.PartitionID, Node: e.node})
		return err
	}

	e.post(ports.Ok{PartitionID: req.PartitionID, Node: e.node, OutputURI: outURI})
	return nil
}
