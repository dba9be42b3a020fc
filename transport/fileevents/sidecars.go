package fileevents

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gilessbrown/disco/job"
)

// Oob is a best-effort ports.OobClient that appends each stored out-of-band
// key blob to "<dir>/oob/<jobName>-<node>.bin". Failures are logged to
// stderr and otherwise swallowed, matching the contract that OobClient.Store
// must never affect job outcome.
type Oob struct {
	dir string
}

// NewOob returns an Oob rooted at dir.
func NewOob(dir string) *Oob {
	return &Oob{dir: filepath.Join(dir, "oob")}
}

func (o *Oob) Store(jobName, node string, oobKeys []byte) {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "fileevents: oob: %v\n", err)
		return
	}
	path := filepath.Join(o.dir, jobName+"-"+node+".bin")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fileevents: oob: open %s: %v\n", path, err)
		return
	}
	defer f.Close()
	if _, err := f.Write(oobKeys); err != nil {
		fmt.Fprintf(os.Stderr, "fileevents: oob: write %s: %v\n", path, err)
	}
}

// Gc is a best-effort ports.GcClient that merely logs which map outputs
// would be removed; cmd/jobworkerd owns the actual storage these URIs refer
// to and decides whether deleting them is safe.
type Gc struct{}

// NewGc returns a Gc.
func NewGc() *Gc {
	return &Gc{}
}

func (g *Gc) RemoveMapResults(reduceInputs []job.InputSpec) {
	for _, in := range reduceInputs {
		for _, u := range in.URIs() {
			fmt.Fprintf(os.Stderr, "fileevents: gc: map result no longer needed: %s\n", u)
		}
	}
}
