package grpcjob

import (
	"context"

	"google.golang.org/grpc"

	"github.com/gilessbrown/disco/ports"
)

// Handler is what cmd/jobworkerd implements to serve WorkerService: accept a
// submitted task (dispatching it to some local worker goroutine and posting
// its eventual outcome to the sink registered with Subscribe), and stop
// serving outcomes for a killed job.
type Handler interface {
	HandleSubmit(ctx context.Context, req ports.SubmitRequest) error
	HandleKillJob(ctx context.Context, jobName string) error

	// Subscribe registers a sink that receives every outcome the handler
	// produces from here on, until ctx is done. Implementations must close
	// done once they stop delivering to sink.
	Subscribe(ctx context.Context, sink chan<- ports.Outcome, done chan<- struct{})
}

// ServiceDesc builds the grpc.ServiceDesc for WorkerService bound to h. Pass
// the result to grpc.NewServer().RegisterService.
func ServiceDesc(h Handler) *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*Handler)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Submit",
				Handler:    submitHandler(h),
			},
			{
				MethodName: "KillJob",
				Handler:    killJobHandler(h),
			},
		},
		Streams: []grpc.StreamDesc{
			{
				StreamName:    "Outcomes",
				Handler:       outcomesHandler(h),
				ServerStreams: true,
			},
		},
		Metadata: "disco/jobworker.proto",
	}
}

func submitHandler(h Handler) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		var wire submitRequest
		if err := dec(&wire); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return &submitReply{}, h.HandleSubmit(ctx, fromWireSubmit(wire))
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSubmit}
		handler := func(ctx context.Context, req any) (any, error) {
			return &submitReply{}, h.HandleSubmit(ctx, fromWireSubmit(*req.(*submitRequest)))
		}
		return interceptor(ctx, &wire, info, handler)
	}
}

func killJobHandler(h Handler) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		var wire killRequest
		if err := dec(&wire); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return &killReply{}, h.HandleKillJob(ctx, wire.JobName)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodKillJob}
		handler := func(ctx context.Context, req any) (any, error) {
			r := req.(*killRequest)
			return &killReply{}, h.HandleKillJob(ctx, r.JobName)
		}
		return interceptor(ctx, &wire, info, handler)
	}
}

func outcomesHandler(h Handler) func(any, grpc.ServerStream) error {
	return func(srv any, stream grpc.ServerStream) error {
		var ignored struct{}
		if err := stream.RecvMsg(&ignored); err != nil {
			return err
		}

		sink := make(chan ports.Outcome, 256)
		done := make(chan struct{})
		go h.Subscribe(stream.Context(), sink, done)

		for {
			select {
			case <-stream.Context().Done():
				return stream.Context().Err()
			case <-done:
				return nil
			case o, ok := <-sink:
				if !ok {
					return nil
				}
				env := toWireOutcome(o)
				if err := stream.SendMsg(&env); err != nil {
					return err
				}
			}
		}
	}
}
