package job

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingle(t *testing.T) {
	s := Single("disco://node-1/a")
	require.False(t, s.IsReplicated())
	require.Equal(t, []string{"disco://node-1/a"}, s.URIs())
	require.Equal(t, "disco://node-1/a", s.String())
}

func TestReplicated(t *testing.T) {
	s := Replicated("disco://node-1/a", "disco://node-2/a")
	require.True(t, s.IsReplicated())
	require.Len(t, s.URIs(), 2)
}

func TestReplicatedPanicsOnTooFewURIs(t *testing.T) {
	require.Panics(t, func() { Replicated("disco://node-1/a") })
}
