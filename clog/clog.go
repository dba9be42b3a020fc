// Package clog provides conditional logging for internal step tracing in the
// coordinator, the gRPC transport client and the worker daemon. It is
// deliberately separate from the
// externally-polled event stream (see transport/fileevents), which is never
// gated behind this package's enable flag.
package clog

import (
	"fmt"
	"log"
)

var enabled = false

// Enable turns on conditional log output process-wide.
func Enable() {
	enabled = true
}

// A CLogger logs output in the manner of the standard logger but can be
// conditionally silenced. By default, conditional logging is disabled.
type CLogger struct {
	logger *log.Logger // standard logger with prefix
}

// New creates a new conditional logger with the given prefix.
func New(prefixFormat string, prefixArgs ...any) *CLogger {
	return &CLogger{
		log.New(
			log.Default().Writer(),
			fmt.Sprintf(prefixFormat, prefixArgs...),
			log.Ldate|log.Ltime|log.Lmicroseconds|log.Lmsgprefix,
		),
	}
}

// WithJob returns a derived logger that appends a "job=<jobName>" tag to
// this logger's existing prefix, for call sites (such as the coordinator's
// abort path) that log several lines about the same job in a row and would
// otherwise repeat the job name in every format string.
func (c *CLogger) WithJob(jobName string) *CLogger {
	return &CLogger{
		logger: log.New(c.logger.Writer(), c.logger.Prefix()+"job="+jobName+" ", c.logger.Flags()),
	}
}

// Printf logs output conditionally (if enabled via Enable) in the manner of
// log.Printf.
func (c *CLogger) Printf(format string, a ...any) {
	if !enabled {
		return
	}
	c.logger.Printf(format, a...)
}

// Errorf logs output unconditionally in the manner of log.Printf.
func (c *CLogger) Errorf(format string, a ...any) {
	c.logger.Printf(format, a...)
}
