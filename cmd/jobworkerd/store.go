package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// store resolves disco/dir/http-scheme input and output URIs to paths
// beneath a single local base directory. This stands in for the real,
// distributed storage layer a worker pool would otherwise talk to — see
// SPEC_FULL.md on the supplemented worker pool daemon.
type store struct {
	baseDir string
	node    string
}

func newStore(baseDir, node string) *store {
	return &store{baseDir: baseDir, node: node}
}

// open resolves uri to a local path and opens it for reading.
func (s *store) open(uri string) (*os.File, error) {
	return os.Open(s.path(uri))
}

// create allocates a fresh output path for phaseTag/jobName/partitionID and
// returns both the file, open for writing, and the URI a caller elsewhere in
// the cluster would use to read it back.
func (s *store) create(jobName, phaseTag string, partitionID int) (*os.File, string, error) {
	rel := filepath.Join(jobName, phaseTag+"-"+strconv.Itoa(partitionID)+".out")
	full := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, "", err
	}
	f, err := os.Create(full)
	if err != nil {
		return nil, "", err
	}
	uri := "dir://" + s.node + "/" + filepath.ToSlash(rel)
	return f, uri, nil
}

// path strips a recognized scheme and authority from uri, leaving a path
// relative to baseDir. A uri with no recognized scheme is treated as already
// relative.
func (s *store) path(uri string) string {
	rest := uri
	for _, scheme := range []string{"disco://", "dir://", "http://"} {
		if cut, ok := strings.CutPrefix(uri, scheme); ok {
			if i := strings.IndexByte(cut, '/'); i != -1 {
				rest = cut[i+1:]
			} else {
				rest = ""
			}
			break
		}
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(rest))
}

// splitSynthetic parses the quoted, space-joined URI list a reduce
// partition's sole variant carries (see phase.quoteJoin) back into its
// individual URIs.
func splitSynthetic(synthetic string) []string {
	var uris []string
	inQuote := false
	var cur strings.Builder
	for _, r := range synthetic {
		switch {
		case r == '\'':
			if inQuote {
				uris = append(uris, cur.String())
				cur.Reset()
			}
			inQuote = !inQuote
		case inQuote:
			cur.WriteRune(r)
		}
	}
	return uris
}
