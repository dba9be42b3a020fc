package registry

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineCountMapReduce(t *testing.T) {
	lc := LineCount{}

	var part1, part2 bytes.Buffer
	require.NoError(t, lc.Map(strings.NewReader("a\nb\nc\n"), &part1))
	require.NoError(t, lc.Map(strings.NewReader("d\ne\n"), &part2))

	var final bytes.Buffer
	require.NoError(t, lc.Reduce([]io.Reader{&part1, &part2}, &final))
	require.Equal(t, "5\n", final.String())
}
