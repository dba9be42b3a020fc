package main

import (
	"context"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gilessbrown/disco/coordinator"
	"github.com/gilessbrown/disco/job"
	"github.com/gilessbrown/disco/metrics"
	"github.com/gilessbrown/disco/phase"
	"github.com/gilessbrown/disco/transport/fileevents"
	"github.com/gilessbrown/disco/transport/grpcjob"
)

func newSubmitCmd() *cobra.Command {
	var nMap, nRed, maxFailures int
	var doReduce bool

	cmd := &cobra.Command{
		Use:   "submit <name> <input> [input...]",
		Short: "Run a job to completion against the worker pool",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workerAddr, _ := cmd.Flags().GetString("worker")
			eventDir, _ := cmd.Flags().GetString("event-dir")

			name := args[0]
			inputs := make([]job.InputSpec, len(args)-1)
			for i, arg := range args[1:] {
				uris := strings.Split(arg, "|")
				if len(uris) == 1 {
					inputs[i] = job.Single(uris[0])
				} else {
					inputs[i] = job.Replicated(uris...)
				}
			}

			worker, err := grpcjob.Dial(workerAddr)
			if err != nil {
				return err
			}
			defer worker.Close()

			events, err := fileevents.New(eventDir)
			if err != nil {
				return err
			}

			c := coordinator.New(
				worker,
				events,
				fileevents.NewOob(eventDir),
				fileevents.NewGc(),
				phase.Config{MaxFailureRate: maxFailures},
				metrics.NewCollector(prometheus.NewRegistry()),
			)

			desc := job.Descriptor{
				Name:     name,
				Inputs:   inputs,
				NMap:     nMap,
				NRed:     nRed,
				DoReduce: doReduce,
				Output:   os.Stdout,
			}
			return c.Start(context.Background(), desc, nil)
		},
	}

	cmd.Flags().IntVar(&nMap, "nmap", 1, "maximum concurrent map tasks; 0 skips the map phase")
	cmd.Flags().IntVar(&nRed, "nred", 1, "maximum concurrent reduce tasks")
	cmd.Flags().BoolVar(&doReduce, "reduce", true, "run the reduce phase")
	cmd.Flags().IntVar(&maxFailures, "max-failures", phase.DefaultConfig().MaxFailureRate, "per-partition failure count tolerated before aborting")
	return cmd
}
