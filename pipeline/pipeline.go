package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/coredag/treediff/diff"
	"github.com/coredag/treediff/object"
)

// Default per-worker cache budgets, in bytes of decoded payload, used
// when a pipeline is built without WithCacheBudget.
const (
	defaultObjectCacheBytes = 64 << 20
	defaultPackCacheBytes   = 64 << 20
)

// CommitPairPipeline diffs a sequence of commit pairs against a
// shared, read-only backing ObjectSource, either one pair at a time
// or across a bounded worker pool.
type CommitPairPipeline struct {
	source   object.ObjectSource
	resolver CommitResolver
	idSize   int

	workers          int
	objectCacheBytes int64
	packCacheBytes   int64
}

// Option configures a CommitPairPipeline.
type Option func(*CommitPairPipeline)

// WithWorkers sets the worker pool size RunParallel uses; n <= 0
// means "let errgroup run every pair concurrently with no cap".
func WithWorkers(n int) Option {
	return func(p *CommitPairPipeline) { p.workers = n }
}

// WithCacheBudget overrides the default per-worker object/pack cache
// byte budgets.
func WithCacheBudget(objectBytes, packBytes int64) Option {
	return func(p *CommitPairPipeline) {
		p.objectCacheBytes = objectBytes
		p.packCacheBytes = packBytes
	}
}

// New constructs a CommitPairPipeline over source (the shared,
// read-only object database) using resolver to turn commit ids into
// tree ids, decoding ids of the given width.
func New(source object.ObjectSource, resolver CommitResolver, idSize int, opts ...Option) *CommitPairPipeline {
	p := &CommitPairPipeline{
		source:           source,
		resolver:         resolver,
		idSize:           idSize,
		objectCacheBytes: defaultObjectCacheBytes,
		packCacheBytes:   defaultPackCacheBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ErrCommitPair wraps a failure diffing one particular pair, so a
// caller driving many pairs can tell which one failed.
type ErrCommitPair struct {
	Pair CommitPair
	Err  error
}

func (e *ErrCommitPair) Error() string {
	return fmt.Sprintf("pipeline: diffing %s..%s: %s", e.Pair.Before, e.Pair.After, e.Err)
}

func (e *ErrCommitPair) Unwrap() error { return e.Err }

// RunSequential diffs every pair in order against the pipeline's own
// ObjectSource directly (no per-pair cache layering — a single
// sequential run already benefits from whatever caching source
// itself provides), using the same visitor for every pair.
func (p *CommitPairPipeline) RunSequential(ctx context.Context, pairs []CommitPair, visitor diff.Visitor) error {
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.diffPair(ctx, pair, p.source, visitor); err != nil {
			return &ErrCommitPair{Pair: pair, Err: err}
		}
	}
	return nil
}

// RunParallel diffs pairs across a worker pool, calling newVisitor
// once per pair so every goroutine gets its own visitor instance, and
// wrapping the shared source in a fresh per-worker ObjectCache and
// PackCache so no cache is ever touched by more than one goroutine.
func (p *CommitPairPipeline) RunParallel(ctx context.Context, pairs []CommitPair, newVisitor VisitorFactory) error {
	g, ctx := errgroup.WithContext(ctx)
	if p.workers > 0 {
		g.SetLimit(p.workers)
	}

	for _, pair := range pairs {
		pair := pair
		g.Go(func() error {
			objCache, err := NewObjectCache(p.source, p.objectCacheBytes)
			if err != nil {
				return &ErrCommitPair{Pair: pair, Err: err}
			}
			defer objCache.Close()

			packCache := NewPackCache(objCache, p.packCacheBytes)

			if err := p.diffPair(ctx, pair, packCache, newVisitor()); err != nil {
				return &ErrCommitPair{Pair: pair, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// RunParallelWithSharedVisitor is RunParallel for a visitor the
// caller asserts is safe to invoke concurrently from every worker —
// CountingVisitor is the motivating case. Passing a visitor with
// per-path mutable state here (a Recorder, a PathTracker-backed
// visitor) is a data race; use RunParallel with a VisitorFactory
// instead.
func (p *CommitPairPipeline) RunParallelWithSharedVisitor(ctx context.Context, pairs []CommitPair, visitor diff.Visitor) error {
	return p.RunParallel(ctx, pairs, func() diff.Visitor { return visitor })
}

func (p *CommitPairPipeline) diffPair(ctx context.Context, pair CommitPair, source object.ObjectSource, visitor diff.Visitor) error {
	beforeTree, err := p.resolver.ResolveTree(ctx, pair.Before)
	if err != nil {
		return err
	}
	afterTree, err := p.resolver.ResolveTree(ctx, pair.After)
	if err != nil {
		return err
	}

	d := diff.New(source, p.idSize)
	return d.DiffIDs(beforeTree, afterTree, visitor)
}
