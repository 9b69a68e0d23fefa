package pipeline

import (
	"sync/atomic"

	"github.com/coredag/treediff/diff"
)

// VisitorFactory builds a fresh diff.Visitor for a single commit
// pair. RunParallel calls it once per pair so per-pair mutable state
// (a PathTracker's buffer, an accumulating Recorder) is never shared
// across goroutines.
type VisitorFactory func() diff.Visitor

// CountingVisitor counts emitted changes with a single atomic
// counter. Unlike most Visitor implementations it carries no
// per-path mutable state, so one instance is safe to share across
// every worker in a parallel run — use it directly as a
// VisitorFactory via CountingVisitor.Factory, or pass the same
// instance to every pair.
type CountingVisitor struct {
	count atomic.Int64
}

func NewCountingVisitor() *CountingVisitor {
	return &CountingVisitor{}
}

func (c *CountingVisitor) Push(string) diff.PathId { return 0 }
func (c *CountingVisitor) Pop()                    {}

func (c *CountingVisitor) Visit(diff.Change, diff.PathId) diff.Action {
	c.count.Add(1)
	return diff.Continue
}

// Count returns the total number of changes observed so far. Safe to
// call concurrently with in-flight Visit calls; it only guarantees a
// consistent total once every worker has joined.
func (c *CountingVisitor) Count() int64 {
	return c.count.Load()
}

// Factory returns a VisitorFactory that always hands back this same
// shared instance, for RunParallel callers that only need a count.
func (c *CountingVisitor) Factory() VisitorFactory {
	return func() diff.Visitor { return c }
}
