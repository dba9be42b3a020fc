// Package grpcjob implements the coordinator-to-worker-pool transport over
// gRPC: a hand-written client/server pair exchanging JSON-coded messages on
// the wire (see codec.go) rather than protobuf, since this service has no
// .proto-generated stub. The client dials without transport security and
// receives outcomes over a single server-streaming subscription.
package grpcjob

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sony/gobreaker"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/gilessbrown/disco/clog"
	"github.com/gilessbrown/disco/ports"
)

// Client is a ports.WorkerClient backed by a gRPC connection to a worker
// pool process (cmd/jobworkerd). Submit and KillJob calls are wrapped in a
// circuit breaker so that a worker pool in a bad state fails fast instead of
// piling up blocked calls against it.
type Client struct {
	*clog.CLogger
	conn   *grpc.ClientConn
	breaker *gobreaker.CircuitBreaker

	mu       sync.Mutex
	outcomes chan ports.Outcome
}

// Dial connects to a worker pool's gRPC address (e.g. "localhost:7654") and
// returns a ready-to-use Client. The caller owns the returned Client and
// must call Close when done with it.
func Dial(address string) (*Client, error) {
	conn, err := grpc.Dial(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpcjob: dial %s: %w", address, err)
	}
	c := &Client{
		CLogger: clog.New("grpcjob client %s ", address),
		conn:    conn,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "jobworker-" + address,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
	return c, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Submit(ctx context.Context, req ports.SubmitRequest) error {
	_, err := c.breaker.Execute(func() (any, error) {
		var reply submitReply
		err := c.conn.Invoke(ctx, methodSubmit, toWireSubmit(req), &reply, grpc.CallContentSubtype(codecName))
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("grpcjob: submit %s:%d: %w", req.PhaseTag, req.PartitionID, err)
	}
	return nil
}

func (c *Client) KillJob(ctx context.Context, jobName string) error {
	_, err := c.breaker.Execute(func() (any, error) {
		var reply killReply
		err := c.conn.Invoke(ctx, methodKillJob, killRequest{JobName: jobName}, &reply, grpc.CallContentSubtype(codecName))
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("grpcjob: kill job %s: %w", jobName, err)
	}
	return nil
}

// Outcomes returns the single shared channel this Client posts received
// worker outcomes to. The first call opens the underlying server-streaming
// subscription in a background goroutine; subsequent calls return the same
// channel.
func (c *Client) Outcomes() <-chan ports.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = make(chan ports.Outcome, 256)
		go c.pump()
	}
	return c.outcomes
}

func (c *Client) pump() {
	ctx := context.Background()
	stream, err := c.conn.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, methodOutcomes, grpc.CallContentSubtype(codecName))
	if err != nil {
		c.Errorf("Failed opening outcomes stream: %v", err)
		c.outcomes <- ports.MasterError{Reason: fmt.Sprintf("cannot subscribe to worker pool: %v", err)}
		return
	}
	if err := stream.SendMsg(&struct{}{}); err != nil {
		c.Errorf("Failed sending outcomes subscription request: %v", err)
		c.outcomes <- ports.MasterError{Reason: fmt.Sprintf("cannot subscribe to worker pool: %v", err)}
		return
	}
	if err := stream.CloseSend(); err != nil {
		c.Errorf("Failed closing outcomes subscription send side: %v", err)
	}

	for {
		var env outcomeEnvelope
		if err := stream.RecvMsg(&env); err != nil {
			if err == io.EOF {
				return
			}
			if status.Code(err) == codes.Canceled {
				return
			}
			c.Errorf("Outcomes stream ended unexpectedly: %v", err)
			c.outcomes <- ports.MasterError{Reason: fmt.Sprintf("outcomes stream ended: %v", err)}
			return
		}
		c.outcomes <- fromWireOutcome(env)
	}
}
