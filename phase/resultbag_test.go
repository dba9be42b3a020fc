package phase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultBagDeduplicates(t *testing.T) {
	bag := NewResultBag()
	bag.Add("disco://node-1/out-0")
	bag.Add("disco://node-1/out-0")
	bag.Add("disco://node-2/out-1")

	require.Equal(t, 2, bag.Len())
	require.Len(t, bag.URIs(), 2)
}
