/*
jobcoordd runs a single job to completion against a worker pool
(cmd/jobworkerd), then exits. It dials the worker pool over gRPC, writes
job events to a local JSONL event log, and exposes Prometheus metrics on a
second listen address while the job runs.

For usage details, run jobcoordd with the command line flag -h or --help.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gilessbrown/disco/clog"
	"github.com/gilessbrown/disco/coordinator"
	"github.com/gilessbrown/disco/job"
	"github.com/gilessbrown/disco/metrics"
	"github.com/gilessbrown/disco/phase"
	"github.com/gilessbrown/disco/transport/fileevents"
	"github.com/gilessbrown/disco/transport/grpcjob"
)

func main() {
	var workerAddr string
	var metricsAddr string
	var eventDir string
	var name string
	var nMap int
	var nRed int
	var doReduce bool
	var maxFailureRate int
	var help bool
	var logOutput bool

	flag.Usage = usage
	flag.StringVar(&workerAddr, "w", "localhost:7654", "jobworkerd gRPC address")
	flag.StringVar(&metricsAddr, "m", ":9090", "Prometheus /metrics listen address")
	flag.StringVar(&eventDir, "e", "./jobcoordd-events", "directory for per-job event logs")
	flag.StringVar(&name, "name", "", "job name; also the name of the computation to run (required)")
	flag.IntVar(&nMap, "nmap", 1, "maximum concurrent map tasks; 0 skips the map phase")
	flag.IntVar(&nRed, "nred", 1, "maximum concurrent reduce tasks")
	flag.BoolVar(&doReduce, "reduce", true, "run the reduce phase")
	flag.IntVar(&maxFailureRate, "max-failures", phase.DefaultConfig().MaxFailureRate, "per-partition failure count tolerated before aborting")
	flag.BoolVar(&help, "h", false, "Show usage information")
	flag.BoolVar(&logOutput, "l", false, "Show logging output (for debugging)")
	flag.Parse()

	if help || name == "" || flag.NArg() == 0 {
		usage()
		if name == "" || flag.NArg() == 0 {
			os.Exit(1)
		}
		os.Exit(0)
	}
	if logOutput {
		clog.Enable()
	}

	inputs := make([]job.InputSpec, flag.NArg())
	for i, arg := range flag.Args() {
		uris := strings.Split(arg, "|")
		if len(uris) == 1 {
			inputs[i] = job.Single(uris[0])
		} else {
			inputs[i] = job.Replicated(uris...)
		}
	}

	worker, err := grpcjob.Dial(workerAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobcoordd: %v\n", err)
		os.Exit(1)
	}
	defer worker.Close()

	events, err := fileevents.New(eventDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobcoordd: %v\n", err)
		os.Exit(1)
	}
	oob := fileevents.NewOob(eventDir)
	gc := fileevents.NewGc()
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	go serveMetrics(metricsAddr)

	c := coordinator.New(worker, events, oob, gc, phase.Config{MaxFailureRate: maxFailureRate}, collector)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("Terminating job on signal...")
		cancel()
	}()

	desc := job.Descriptor{
		Name:     name,
		Inputs:   inputs,
		NMap:     nMap,
		NRed:     nRed,
		DoReduce: doReduce,
		Output:   os.Stdout,
	}

	if err := c.Start(ctx, desc, nil); err != nil {
		fmt.Fprintf(os.Stderr, "jobcoordd: job %s failed: %v\n", name, err)
		os.Exit(1)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "jobcoordd: metrics server: %v\n", err)
	}
}

func usage() {
	fmt.Print(`usage: jobcoordd [-h|--help] [-l] -name jobName [flags] input [input...]

Runs a single job against a worker pool. Each input is a URI, or several
alternative URIs for the same input joined with '|' (e.g.
"disco://n1/a|dir://n2/a").

Flags:
`)
	flag.PrintDefaults()
}
