package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gilessbrown/disco/transport/grpcjob"
)

func newKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill <name>",
		Short: "Terminate a job running against the worker pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workerAddr, _ := cmd.Flags().GetString("worker")

			worker, err := grpcjob.Dial(workerAddr)
			if err != nil {
				return err
			}
			defer worker.Close()

			return worker.KillJob(context.Background(), args[0])
		},
	}
}
