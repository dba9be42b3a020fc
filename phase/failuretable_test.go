package phase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gilessbrown/disco/ports"
)

func twoVariantSet() TaskSet {
	return TaskSet{
		{ID: 0, Variants: []ports.Variant{
			{URI: "disco://node-1/a", PrefHost: "node-1"},
			{URI: "dir://node-2/a", PrefHost: "node-2"},
		}},
	}
}

func oneVariantSet() TaskSet {
	return TaskSet{
		{ID: 0, Variants: []ports.Variant{{URI: "disco://node-1/a", PrefHost: "node-1"}}},
	}
}

func TestOnDataErrorPrunesFailedVariant(t *testing.T) {
	table := NewFailureTable(twoVariantSet())
	blacklist, remaining := table.OnDataError(0, "disco://node-1/a", "node-1")
	require.Equal(t, []string{"node-1"}, blacklist)
	require.Len(t, remaining, 1)
	require.Equal(t, "dir://node-2/a", remaining[0].URI)
}

func TestOnDataErrorNeverEmptiesRemaining(t *testing.T) {
	table := NewFailureTable(oneVariantSet())
	blacklist, remaining := table.OnDataError(0, "disco://node-1/a", "node-1")
	require.Len(t, blacklist, 1)
	require.Len(t, remaining, 1)
	require.Equal(t, "disco://node-1/a", remaining[0].URI)
}

func TestBlacklistGrowsMonotonically(t *testing.T) {
	table := NewFailureTable(twoVariantSet())
	table.OnDataError(0, "disco://node-1/a", "node-1")
	table.OnDataError(0, "dir://node-2/a", "node-2")
	require.Equal(t, 2, table.BlacklistSize(0))
}

func TestSnapshotReturnsDefensiveCopies(t *testing.T) {
	table := NewFailureTable(twoVariantSet())
	blacklist, remaining := table.Snapshot(0)
	blacklist = append(blacklist, "tampered")
	remaining[0].URI = "tampered"

	blacklist2, remaining2 := table.Snapshot(0)
	require.Empty(t, blacklist2)
	require.NotEqual(t, "tampered", remaining2[0].URI)
}
