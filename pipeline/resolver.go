// Package pipeline drives the differ across a sequence of commit
// pairs, sequentially or with a bounded worker pool, giving each
// worker its own object/pack caches so no cache is ever shared across
// goroutines.
package pipeline

import (
	"context"

	"github.com/coredag/treediff/hash"
)

// CommitPair names the two trees to diff: Before is the parent side,
// After the child side, mirroring diff.TreeDiffer's lhs/rhs.
type CommitPair struct {
	Before, After hash.ObjectID
}

// CommitResolver resolves a commit id to the root tree id it points
// at. Decoding commit objects (parent links, author/committer
// metadata) is the caller's responsibility; the pipeline only needs
// the one edge it walks.
type CommitResolver interface {
	ResolveTree(ctx context.Context, commit hash.ObjectID) (hash.ObjectID, error)
}
