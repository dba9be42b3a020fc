// Package locality implements the pure locality-hint function used when
// building a phase's task set: given an input URI, derive the worker host
// that is likely to already hold that data.
package locality

import "strings"

// schemes lists the URI scheme prefixes for which a locality hint can be
// derived. Any other scheme (or no recognizable scheme at all) yields no
// hint.
var schemes = []string{"disco://", "dir://", "http://"}

// Resolve extracts the authority (host) component from uri if uri starts
// with one of the recognized scheme prefixes. It reports ok=false if no
// recognized scheme matches, in which case host is the empty string.
//
// Resolve is idempotent on its own output: calling Resolve again on a bare
// host (no scheme prefix) always yields ok=false, since a bare host matches
// none of the recognized schemes.
func Resolve(uri string) (host string, ok bool) {
	for _, scheme := range schemes {
		if rest, found := strings.CutPrefix(uri, scheme); found {
			return authority(rest), true
		}
	}
	return "", false
}

// ResolveBytes is Resolve for a byte-string input, for callers that already
// hold the URI as bytes (e.g. decoded directly off the wire). It converts
// uri to a string and calls Resolve.
func ResolveBytes(uri []byte) (host string, ok bool) {
	return Resolve(string(uri))
}

// authority returns the host[:port] portion of a scheme-stripped URI
// remainder, i.e. everything up to the first '/', '?' or '#'.
func authority(rest string) string {
	if i := strings.IndexAny(rest, "/?#"); i != -1 {
		return rest[:i]
	}
	return rest
}
