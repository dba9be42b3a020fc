package registry

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWordCountMapReduce(t *testing.T) {
	wc := WordCount{}

	var part1, part2 bytes.Buffer
	require.NoError(t, wc.Map(strings.NewReader("the quick fox. The Fox jumps!"), &part1))
	require.NoError(t, wc.Map(strings.NewReader("the fox runs"), &part2))

	var final bytes.Buffer
	require.NoError(t, wc.Reduce([]io.Reader{&part1, &part2}, &final))

	out := final.String()
	require.Contains(t, out, "the\t3\n")
	require.Contains(t, out, "fox\t3\n")
}
