// Package fileevents implements a file-backed ports.EventClient: one
// append-only JSON-Lines file per job under a configured directory,
// written with zerolog so each line carries a timestamp, job name, tag and
// formatted message ready for external polling (e.g. by cmd/jobctl's status
// and tail subcommands).
package fileevents

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gilessbrown/disco/ports"
)

// Sink is a ports.EventClient that writes each job's events to its own file
// under dir, named "<jobName>.jsonl".
type Sink struct {
	dir string

	mu   sync.Mutex
	logs map[string]*jobLog
}

type jobLog struct {
	file   *os.File
	logger zerolog.Logger
}

// New returns a Sink rooted at dir. dir is created if it doesn't exist.
func New(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("fileevents: create event directory %s: %w", dir, err)
	}
	return &Sink{dir: dir, logs: make(map[string]*jobLog)}, nil
}

func (s *Sink) logFor(jobName string) (*jobLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if jl, ok := s.logs[jobName]; ok {
		return jl, nil
	}

	path := filepath.Join(s.dir, jobName+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("fileevents: open event log %s: %w", path, err)
	}
	jl := &jobLog{
		file:   f,
		logger: zerolog.New(f).With().Timestamp().Str("job", jobName).Logger(),
	}
	s.logs[jobName] = jl
	return jl, nil
}

// Emit appends one event line for jobName. A failure to open or write the
// underlying file is reported to stderr rather than returned, matching
// EventClient's non-blocking, best-effort contract.
func (s *Sink) Emit(jobName string, tag ports.EventTag, format string, args ...any) {
	jl, err := s.logFor(jobName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fileevents: %v\n", err)
		return
	}
	jl.logger.Info().Str("tag", string(tag)).Msg(fmt.Sprintf(format, args...))
}

// Flush closes the file for jobName, if any is open. Subsequent Emit calls
// for the same job reopen it in append mode.
func (s *Sink) Flush(jobName string) error {
	s.mu.Lock()
	jl, ok := s.logs[jobName]
	if ok {
		delete(s.logs, jobName)
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	if err := jl.file.Close(); err != nil {
		return fmt.Errorf("fileevents: close event log for %s: %w", jobName, err)
	}
	return nil
}
