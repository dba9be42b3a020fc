// jobctl is the operator-facing CLI for running and inspecting jobs against
// a worker pool: submit runs a job to completion, status and tail inspect
// its event log, and kill terminates one in flight.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jobctl",
		Short:         "Operate jobs against a disco worker pool",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().String("worker", "localhost:7654", "jobworkerd gRPC address")
	cmd.PersistentFlags().String("event-dir", "./jobcoordd-events", "directory holding per-job event logs")

	cmd.AddCommand(newSubmitCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newTailCmd())
	cmd.AddCommand(newKillCmd())
	return cmd
}
