package grpcjob

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is negotiated through the gRPC content-type header
// (content-type: application/grpc+json) so that both sides exchange plain
// JSON messages instead of protobuf wire format. This avoids a dependency on
// generated .pb.go stubs for a service this small: the service methods and
// message shapes below are hand-written against google.golang.org/grpc's
// generic Invoke/NewStream/RegisterService primitives, the same primitives
// any protoc-gen-go-grpc stub ultimately calls into.
const codecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("grpcjob: marshal %T: %w", v, err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("grpcjob: unmarshal into %T: %w", v, err)
	}
	return nil
}
