package phase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gilessbrown/disco/job"
)

func TestMapTaskSetOneVariantPerReplica(t *testing.T) {
	inputs := []job.InputSpec{
		job.Single("disco://node-1/a"),
		job.Replicated("disco://node-2/b", "dir://node-3/b"),
	}
	ts := MapTaskSet(inputs)
	require.Len(t, ts, 2)
	require.Equal(t, 0, ts[0].ID)
	require.Len(t, ts[0].Variants, 1)
	require.Equal(t, 1, ts[1].ID)
	require.Len(t, ts[1].Variants, 2)
	require.Equal(t, "node-2", ts[1].Variants[0].PrefHost)
	require.Equal(t, "node-3", ts[1].Variants[1].PrefHost)
}

func TestReduceTaskSetRejectsReplicas(t *testing.T) {
	inputs := []job.InputSpec{
		job.Single("disco://node-1/a"),
		job.Replicated("disco://node-2/b", "dir://node-3/b"),
	}
	_, err := ReduceTaskSet(inputs)
	require.ErrorIs(t, err, ErrRedundantInputs)
}

func TestReduceTaskSetSharesSyntheticInput(t *testing.T) {
	inputs := []job.InputSpec{
		job.Single("disco://node-1/a"),
		job.Single("disco://node-2/b"),
	}
	ts, err := ReduceTaskSet(inputs)
	require.NoError(t, err)
	require.Len(t, ts, 2)
	require.Equal(t, ts[0].Variants[0].URI, ts[1].Variants[0].URI)
	require.Equal(t, "node-1", ts[0].Variants[0].PrefHost)
	require.Equal(t, "node-2", ts[1].Variants[0].PrefHost)
}
