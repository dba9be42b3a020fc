/*
jobworkerd serves the worker pool side of the job coordinator protocol over
gRPC: it accepts submitted map/reduce tasks, executes a registered
computation (named after the submitting job) against local storage, and
streams task outcomes back to whichever coordinator is subscribed.

For usage details, run jobworkerd with the command line flag -h or --help.
*/
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/gilessbrown/disco/clog"
	"github.com/gilessbrown/disco/registry"
	"github.com/gilessbrown/disco/transport/grpcjob"
)

func main() {
	var addr string
	var baseDir string
	var node string
	var help bool
	var logOutput bool

	flag.Usage = usage
	flag.StringVar(&addr, "a", ":7654", "gRPC listen address")
	flag.StringVar(&baseDir, "d", "./jobworkerd-data", "local directory backing input/output storage")
	flag.StringVar(&node, "n", hostOrFallback(), "node name reported in task outcomes")
	flag.BoolVar(&help, "h", false, "Show usage information")
	flag.BoolVar(&logOutput, "l", false, "Show logging output (for debugging)")
	flag.Parse()

	if help {
		usage()
		os.Exit(0)
	}
	if logOutput {
		clog.Enable()
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobworkerd: listen %s: %v\n", addr, err)
		os.Exit(1)
	}

	reg := registry.NewRegistry()
	e := newEngine(node, newStore(baseDir, node), reg)
	srv := grpc.NewServer()
	srv.RegisterService(grpcjob.ServiceDesc(e), e)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("Shutting down jobworkerd...")
		srv.GracefulStop()
	}()

	fmt.Printf("jobworkerd listening on %s as node %q, storage at %s\n", addr, node, baseDir)
	fmt.Printf("registered computations: %v\n", reg.Names())
	if err := srv.Serve(lis); err != nil {
		fmt.Fprintf(os.Stderr, "jobworkerd: serve: %v\n", err)
		os.Exit(1)
	}
}

func hostOrFallback() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "local-1"
	}
	return h
}

func usage() {
	fmt.Print(`usage: jobworkerd [-h|--help] [-l] [-a addr] [-d dir] [-n node]

Starts a worker pool process that serves submitted map/reduce tasks over
gRPC and executes them against local storage.

Flags:
`)
	flag.PrintDefaults()
}
