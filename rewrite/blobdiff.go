package rewrite

import (
	"bytes"
	"errors"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Algorithm selects the line-diff algorithm a BlobDiff implementation
// uses to compute token counts for the rewrite similarity formula.
type Algorithm uint8

const (
	Myers Algorithm = iota
	Histogram
)

// ErrUnsupportedAlgorithm is returned by a BlobDiff implementation
// that does not support the requested Algorithm.
var ErrUnsupportedAlgorithm = errors.New("rewrite: unsupported diff algorithm")

// TokenCounts is the line-level accounting find_match's similarity
// formula needs: how many lines of before were removed, and how many
// lines of after were inserted, to turn before into after.
type TokenCounts struct {
	Removals   int
	Insertions int
}

// BlobDiff computes the line-level token counts between two blob
// payloads. Tracker uses it only for the similarity pass; identity
// matches never call it.
type BlobDiff interface {
	DiffTokens(before, after []byte, algo Algorithm) (TokenCounts, error)
}

// LineBlobDiff is the default BlobDiff, built on sergi/go-diff's port
// of Myers diff the way go-git's merkletrie/difftree test fixtures
// exercise it. It only implements Myers; Histogram is a known
// algorithm name the format reserves but this implementation declines.
type LineBlobDiff struct{}

func (LineBlobDiff) DiffTokens(before, after []byte, algo Algorithm) (TokenCounts, error) {
	if algo != Myers {
		return TokenCounts{}, ErrUnsupportedAlgorithm
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var counts TokenCounts
	for _, d := range diffs {
		n := countLines([]byte(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			counts.Removals += n
		case diffmatchpatch.DiffInsert:
			counts.Insertions += n
		}
	}
	return counts, nil
}

// countLines counts newline-delimited lines in b, including a final
// unterminated line if present, and treats an empty slice as zero
// lines.
func countLines(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := bytes.Count(b, []byte("\n"))
	if b[len(b)-1] != '\n' {
		n++
	}
	return n
}
