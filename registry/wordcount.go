package registry

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// WordCount computes per-word occurrence counts across a set of UTF-8 text
// inputs, the classic map/reduce demonstration job. Map output and the
// partial results Reduce consumes are both lines of "word\tcount", one word
// per line; this keeps the wire format human-inspectable.
type WordCount struct{}

func (WordCount) Name() string        { return "wordcount" }
func (WordCount) Description() string { return "counts occurrences of each word across text inputs" }

func (WordCount) Map(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("wordcount: map: read input: %w", err)
	}

	counts := make(map[string]int)
	state := -1
	var wd []byte
	for len(data) > 0 {
		wd, data, state = uniseg.FirstWord(data, state)
		if ignoreWord(wd) {
			continue
		}
		counts[strings.ToLower(string(wd))]++
	}

	bw := bufio.NewWriter(w)
	for word, count := range counts {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", word, count); err != nil {
			return fmt.Errorf("wordcount: map: write partial result: %w", err)
		}
	}
	return bw.Flush()
}

func (WordCount) Reduce(parts []io.Reader, w io.Writer) error {
	totals := make(map[string]int)
	for _, part := range parts {
		sc := bufio.NewScanner(part)
		for sc.Scan() {
			word, count, err := parseCountLine(sc.Text())
			if err != nil {
				return fmt.Errorf("wordcount: reduce: %w", err)
			}
			totals[word] += count
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("wordcount: reduce: read partial result: %w", err)
		}
	}

	words := make([]string, 0, len(totals))
	for word := range totals {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if totals[words[i]] != totals[words[j]] {
			return totals[words[i]] > totals[words[j]]
		}
		return words[i] < words[j]
	})

	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", word, totals[word]); err != nil {
			return fmt.Errorf("wordcount: reduce: write final result: %w", err)
		}
	}
	return bw.Flush()
}

func ignoreWord(w []byte) bool {
	for len(w) > 0 {
		r, size := utf8.DecodeRune(w)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsControl(r) {
			w = w[size:]
			continue
		}
		return false
	}
	return true
}

func parseCountLine(line string) (word string, count int, err error) {
	word, countStr, ok := strings.Cut(line, "\t")
	if !ok {
		return "", 0, fmt.Errorf("malformed partial result line %q", line)
	}
	count, err = strconv.Atoi(countStr)
	if err != nil {
		return "", 0, fmt.Errorf("malformed count in line %q: %w", line, err)
	}
	return word, count, nil
}
