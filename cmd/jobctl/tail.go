package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

func newTailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tail <name>",
		Short: "Follow a job's event log as it is written",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventDir, _ := cmd.Flags().GetString("event-dir")
			return tailEvents(cmd.Context(), filepath.Join(eventDir, args[0]+".jsonl"))
		},
	}
}

// tailEvents polls path for new lines until ctx is canceled (e.g. by
// Ctrl-C), tolerating the file not existing yet — a job's coordinator may
// not have opened its event log at the moment tail is started.
func tailEvents(ctx context.Context, path string) error {
	var f *os.File
	var r *bufio.Reader

	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for {
		if f == nil {
			var err error
			f, err = os.Open(path)
			if err != nil {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					continue
				}
			}
			r = bufio.NewReader(f)
		}

		line, err := r.ReadString('\n')
		if len(line) > 0 {
			var e eventLine
			if json.Unmarshal([]byte(line), &e) == nil {
				fmt.Printf("%s  [%s]  %s\n", e.Time, e.Tag, e.Message)
			}
		}
		if err != nil {
			if err != io.EOF {
				return fmt.Errorf("jobctl: tailing %s: %w", path, err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	}
}
