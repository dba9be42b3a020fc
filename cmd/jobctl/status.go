package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"
)

// eventLine is the subset of a fileevents JSONL record this command reads.
// zerolog field names ("level", "time", "job", "tag", "message") are fixed
// by transport/fileevents.
type eventLine struct {
	Time    string `json:"time"`
	Job     string `json:"job"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <name>",
		Short: "Show the recorded events for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventDir, _ := cmd.Flags().GetString("event-dir")
			return printEvents(filepath.Join(eventDir, args[0]+".jsonl"))
		},
	}
}

func printEvents(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("jobctl: %w", err)
	}
	defer f.Close()

	var lines []eventLine
	maxTagWidth := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e eventLine
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue // tolerate partially written trailing lines
		}
		lines = append(lines, e)
		if w := uniseg.StringWidth(e.Tag); w > maxTagWidth {
			maxTagWidth = w
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("jobctl: reading %s: %w", path, err)
	}

	for _, e := range lines {
		pad := maxTagWidth - uniseg.StringWidth(e.Tag)
		fmt.Printf("%s  [%s]%*s  %s\n", e.Time, e.Tag, pad+1, " ", e.Message)
	}
	return nil
}
