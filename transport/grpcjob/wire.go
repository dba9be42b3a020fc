package grpcjob

import "github.com/gilessbrown/disco/ports"

// serviceName is the fully-qualified gRPC service name used to build method
// paths by hand, since no .proto-generated descriptor exists for it.
const serviceName = "disco.jobworker.WorkerService"

var (
	methodSubmit   = "/" + serviceName + "/Submit"
	methodKillJob  = "/" + serviceName + "/KillJob"
	methodOutcomes = "/" + serviceName + "/Outcomes"
)

// wireVariant mirrors ports.Variant on the wire.
type wireVariant struct {
	URI      string `json:"uri"`
	PrefHost string `json:"pref_host,omitempty"`
}

// submitRequest mirrors ports.SubmitRequest on the wire.
type submitRequest struct {
	JobName     string        `json:"job_name"`
	PartitionID int           `json:"partition_id"`
	PhaseTag    string        `json:"phase_tag"`
	Blacklist   []string      `json:"blacklist,omitempty"`
	Variants    []wireVariant `json:"variants"`
}

type submitReply struct{}

type killRequest struct {
	JobName string `json:"job_name"`
}

type killReply struct{}

// outcomeEnvelope carries one ports.Outcome value tagged with its concrete
// kind, since the wire format has no native sum type.
type outcomeEnvelope struct {
	Kind        string `json:"kind"`
	PartitionID int    `json:"partition_id,omitempty"`
	Node        string `json:"node,omitempty"`
	OutputURI   string `json:"output_uri,omitempty"`
	OobKeys     []byte `json:"oob_keys,omitempty"`
	FailedURI   string `json:"failed_uri,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Payload     []byte `json:"payload,omitempty"`
}

const (
	kindOk            = "ok"
	kindDataError     = "data_error"
	kindJobError      = "job_error"
	kindWorkerCrashed = "worker_crashed"
	kindMasterError   = "master_error"
	kindUnknown       = "unknown"
)

func toWireVariants(vs []ports.Variant) []wireVariant {
	out := make([]wireVariant, len(vs))
	for i, v := range vs {
		out[i] = wireVariant{URI: v.URI, PrefHost: v.PrefHost}
	}
	return out
}

func fromWireVariants(vs []wireVariant) []ports.Variant {
	out := make([]ports.Variant, len(vs))
	for i, v := range vs {
		out[i] = ports.Variant{URI: v.URI, PrefHost: v.PrefHost}
	}
	return out
}

func toWireSubmit(req ports.SubmitRequest) submitRequest {
	return submitRequest{
		JobName:     req.JobName,
		PartitionID: req.PartitionID,
		PhaseTag:    req.PhaseTag,
		Blacklist:   req.Blacklist,
		Variants:    toWireVariants(req.Variants),
	}
}

func fromWireSubmit(req submitRequest) ports.SubmitRequest {
	return ports.SubmitRequest{
		JobName:     req.JobName,
		PartitionID: req.PartitionID,
		PhaseTag:    req.PhaseTag,
		Blacklist:   req.Blacklist,
		Variants:    fromWireVariants(req.Variants),
	}
}

func toWireOutcome(o ports.Outcome) outcomeEnvelope {
	switch v := o.(type) {
	case ports.Ok:
		return outcomeEnvelope{Kind: kindOk, PartitionID: v.PartitionID, Node: v.Node, OutputURI: v.OutputURI, OobKeys: v.OobKeys}
	case ports.DataError:
		return outcomeEnvelope{Kind: kindDataError, PartitionID: v.PartitionID, Node: v.Node, FailedURI: v.FailedURI}
	case ports.JobError:
		return outcomeEnvelope{Kind: kindJobError, PartitionID: v.PartitionID, Node: v.Node}
	case ports.WorkerCrashed:
		return outcomeEnvelope{Kind: kindWorkerCrashed, PartitionID: v.PartitionID, Node: v.Node, Reason: v.Reason}
	case ports.MasterError:
		return outcomeEnvelope{Kind: kindMasterError, Reason: v.Reason}
	case ports.Unknown:
		return outcomeEnvelope{Kind: kindUnknown, Payload: v.Payload}
	default:
		return outcomeEnvelope{Kind: kindUnknown, Payload: []byte("unrecognized outcome type")}
	}
}

func fromWireOutcome(e outcomeEnvelope) ports.Outcome {
	switch e.Kind {
	case kindOk:
		return ports.Ok{PartitionID: e.PartitionID, Node: e.Node, OutputURI: e.OutputURI, OobKeys: e.OobKeys}
	case kindDataError:
		return ports.DataError{PartitionID: e.PartitionID, Node: e.Node, FailedURI: e.FailedURI}
	case kindJobError:
		return ports.JobError{PartitionID: e.PartitionID, Node: e.Node}
	case kindWorkerCrashed:
		return ports.WorkerCrashed{PartitionID: e.PartitionID, Node: e.Node, Reason: e.Reason}
	case kindMasterError:
		return ports.MasterError{Reason: e.Reason}
	default:
		return ports.Unknown{Payload: e.Payload}
	}
}
