package locality

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		uri      string
		wantHost string
		wantOk   bool
	}{
		{"disco://node-3/data/chunk-7", "node-3", true},
		{"dir://node-1.cluster.local:8989/var/disco/in", "node-1.cluster.local:8989", true},
		{"http://example.com/input.txt", "example.com", true},
		{"http://example.com:9090/input.txt?raw=1", "example.com:9090", true},
		{"disco://node-5", "node-5", true},
		{"s3://bucket/key", "", false},
		{"/local/path/no/scheme", "", false},
		{"", "", false},
	}

	for _, c := range cases {
		host, ok := Resolve(c.uri)
		require.Equal(t, c.wantOk, ok, "Resolve(%q)", c.uri)
		require.Equal(t, c.wantHost, host, "Resolve(%q)", c.uri)
	}
}

func TestResolveBytes(t *testing.T) {
	host, ok := ResolveBytes([]byte("disco://worker-9/path"))
	require.True(t, ok)
	require.Equal(t, "worker-9", host)
}

func TestResolveIdempotentOnBareHost(t *testing.T) {
	host, ok := Resolve("disco://node-3/data")
	require.True(t, ok)
	_, ok = Resolve(host)
	require.False(t, ok, "Resolve(%q) on a bare host should not match any scheme", host)
}
