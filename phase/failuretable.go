package phase

import "github.com/gilessbrown/disco/ports"

// failureRecord is the mutable, per-partition bookkeeping a phase keeps
// while it runs: which nodes this partition has already failed a data
// fault on, and which input variants are still considered worth trying.
type failureRecord struct {
	blacklist []string
	remaining []ports.Variant
}

// FailureTable owns one failureRecord per partition for the lifetime of a
// single phase invocation. It is not safe for concurrent use — the
// PhaseRunner that owns it is single-threaded by design (see PhaseRunner).
type FailureTable struct {
	records map[int]*failureRecord
}

// NewFailureTable populates one record per partition with an empty
// blacklist and the partition's full variant list.
func NewFailureTable(partitions TaskSet) *FailureTable {
	t := &FailureTable{records: make(map[int]*failureRecord, len(partitions))}
	for _, p := range partitions {
		t.records[p.ID] = &failureRecord{
			remaining: append([]ports.Variant(nil), p.Variants...),
		}
	}
	return t
}

// BlacklistSize returns the number of nodes currently blacklisted for the
// given partition.
func (t *FailureTable) BlacklistSize(partitionID int) int {
	return len(t.records[partitionID].blacklist)
}

// Snapshot returns copies of the current blacklist and remaining-variants
// for a partition, suitable for handing to WorkerClient.Submit.
func (t *FailureTable) Snapshot(partitionID int) (blacklist []string, remaining []ports.Variant) {
	r := t.records[partitionID]
	return append([]string(nil), r.blacklist...), append([]ports.Variant(nil), r.remaining...)
}

// OnDataError records that partitionID failed on node while trying
// failedURI, appending node to the blacklist (monotonically growing within
// a phase). If more than one variant currently remains, any variant whose
// URI equals failedURI is pruned; otherwise the sole remaining variant is
// kept as a last resort for retrying on a different node. remainingInputs
// is never reduced to empty.
func (t *FailureTable) OnDataError(partitionID int, failedURI, node string) (blacklist []string, remaining []ports.Variant) {
	r := t.records[partitionID]
	r.blacklist = append(r.blacklist, node)

	if len(r.remaining) > 1 {
		filtered := make([]ports.Variant, 0, len(r.remaining))
		for _, v := range r.remaining {
			if v.URI != failedURI {
				filtered = append(filtered, v)
			}
		}
		if len(filtered) > 0 {
			r.remaining = filtered
		}
		// else: pruning would empty remaining — keep the original set.
	}

	return t.Snapshot(partitionID)
}
