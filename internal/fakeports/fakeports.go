// Package fakeports provides deterministic, single-goroutine test doubles
// for the ports contracts. They let phase and coordinator tests script an
// exact sequence of outcomes per partition without any network dependency.
package fakeports

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gilessbrown/disco/job"
	"github.com/gilessbrown/disco/ports"
)

// Script maps a partition ID to the queue of outcomes Worker replays, in
// order, one per Submit received for that partition. A script that runs dry
// produces a JobError so a misconfigured test fails loudly instead of
// hanging.
type Script map[int][]ports.Outcome

// Worker is a scripted ports.WorkerClient. Submit looks up the next queued
// outcome for the submitted partition and posts it to Outcomes synchronously
// (the send happens inline in Submit, before it returns), which keeps test
// sequencing deterministic: a caller that calls Submit then receives from
// Outcomes observes tasks complete in the order they were submitted for any
// single partition.
type Worker struct {
	mu        sync.Mutex
	script    Script
	cursor    map[int]int
	submitted []ports.SubmitRequest
	killed    []string
	outcomes  chan ports.Outcome
	killErr   error
}

// NewWorker returns a Worker that replays script. The outcomes channel is
// buffered large enough that Submit never blocks on it for the scripts this
// package is meant to drive.
func NewWorker(script Script) *Worker {
	return &Worker{
		script:   script,
		cursor:   make(map[int]int),
		outcomes: make(chan ports.Outcome, 64),
	}
}

// Submitted returns every SubmitRequest received so far, in order.
func (w *Worker) Submitted() []ports.SubmitRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ports.SubmitRequest(nil), w.submitted...)
}

// Killed returns every job name passed to KillJob so far, in order.
func (w *Worker) Killed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.killed...)
}

// SetKillErr makes a subsequent KillJob call return err.
func (w *Worker) SetKillErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.killErr = err
}

func (w *Worker) Submit(ctx context.Context, req ports.SubmitRequest) error {
	w.mu.Lock()
	w.submitted = append(w.submitted, req)
	i := w.cursor[req.PartitionID]
	w.cursor[req.PartitionID] = i + 1
	queue := w.script[req.PartitionID]
	w.mu.Unlock()

	var next ports.Outcome
	if i < len(queue) {
		next = queue[i]
	} else {
		next = ports.JobError{PartitionID: req.PartitionID, Node: "fakeports"}
	}

	select {
	case w.outcomes <- next:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (w *Worker) Outcomes() <-chan ports.Outcome {
	return w.outcomes
}

func (w *Worker) KillJob(ctx context.Context, jobName string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.killed = append(w.killed, jobName)
	return w.killErr
}

// Events is a ports.EventClient that records every emitted event in memory.
type Events struct {
	mu     sync.Mutex
	events map[string][]string
	flush  map[string]error
}

// NewEvents returns an empty Events recorder.
func NewEvents() *Events {
	return &Events{events: make(map[string][]string)}
}

func (e *Events) Emit(jobName string, tag ports.EventTag, format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events[jobName] = append(e.events[jobName], fmt.Sprintf("[%s] %s", tag, fmt.Sprintf(format, args...)))
}

func (e *Events) Flush(jobName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.flush != nil {
		return e.flush[jobName]
	}
	return nil
}

// SetFlushErr makes a subsequent Flush for jobName return err.
func (e *Events) SetFlushErr(jobName string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.flush == nil {
		e.flush = make(map[string]error)
	}
	e.flush[jobName] = err
}

// For returns the recorded events for jobName, in emission order.
func (e *Events) For(jobName string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events[jobName]...)
}

// Oob is a ports.OobClient that records every Store call in memory. Since
// the coordinator invokes Store from a spawned goroutine (it is
// fire-and-forget by contract), Oob also exposes a channel a test can
// receive from to synchronize with a Store call instead of polling.
type Oob struct {
	mu     sync.Mutex
	calls  []OobCall
	notify chan OobCall
}

// OobCall is one recorded Oob.Store invocation.
type OobCall struct {
	JobName string
	Node    string
	Keys    []byte
}

func NewOob() *Oob {
	return &Oob{notify: make(chan OobCall, 64)}
}

func (o *Oob) Store(jobName, node string, oobKeys []byte) {
	o.mu.Lock()
	o.calls = append(o.calls, OobCall{JobName: jobName, Node: node, Keys: oobKeys})
	o.mu.Unlock()
	o.notify <- OobCall{JobName: jobName, Node: node, Keys: oobKeys}
}

// Next blocks until a Store call is recorded or timeout elapses.
func (o *Oob) Next(timeout time.Duration) (OobCall, bool) {
	select {
	case c := <-o.notify:
		return c, true
	case <-time.After(timeout):
		return OobCall{}, false
	}
}

// Calls returns every Store call recorded so far, in order.
func (o *Oob) Calls() []OobCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]OobCall(nil), o.calls...)
}

// Gc is a ports.GcClient that records every RemoveMapResults call in memory.
type Gc struct {
	mu    sync.Mutex
	calls [][]job.InputSpec
}

func NewGc() *Gc {
	return &Gc{}
}

func (g *Gc) RemoveMapResults(reduceInputs []job.InputSpec) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, reduceInputs)
}

// Calls returns every RemoveMapResults argument recorded so far, in order.
func (g *Gc) Calls() [][]job.InputSpec {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]job.InputSpec(nil), g.calls...)
}
