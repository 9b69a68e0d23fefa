package rewrite

import (
	"sort"

	"github.com/coredag/treediff/diff"
	"github.com/coredag/treediff/filemode"
	"github.com/coredag/treediff/hash"
	"github.com/coredag/treediff/object"
)

// SourceKind tags whether a matched Source served as a rename target
// or a copy source.
type SourceKind uint8

const (
	RenameTarget SourceKind = iota
	CopySourceMatch
)

// Destination is the Addition-side half of a correlated pair, or a
// plain unmatched change forwarded during the drain phase.
type Destination struct {
	Change   diff.Change
	Location []byte
}

// Source is the Deletion- or still-live-item half of a correlated
// pair.
type Source struct {
	Mode     filemode.EntryMode
	ID       hash.ObjectID
	Kind     SourceKind
	Location []byte
}

// Callback receives one correlated pair (or, during drain, a lone
// Destination with a nil Source) and reports whether tracking should
// continue.
type Callback func(dest Destination, src *Source) diff.Action

// item is one pushed Change plus the byte range of its path within
// the tracker's shared append-only path backing buffer.
type item struct {
	change  diff.Change
	start   int
	end     int
	emitted bool
}

func (it item) location(backing []byte) []byte {
	return backing[it.start:it.end]
}

// Tracker accumulates pushed changes, then in Emit correlates
// Additions with Deletions (and, if configured, other unemitted
// items) by content identity first and line-similarity second.
type Tracker struct {
	cfg      Config
	source   object.ObjectSource
	blobDiff BlobDiff

	items       []item
	pathBacking []byte
}

// NewTracker constructs a Tracker. source resolves blob content for
// the similarity pass; blobDiff computes line token counts. Passing a
// nil blobDiff defaults to LineBlobDiff{}.
func NewTracker(cfg Config, source object.ObjectSource, blobDiff BlobDiff) *Tracker {
	if blobDiff == nil {
		blobDiff = LineBlobDiff{}
	}
	return &Tracker{cfg: cfg, source: source, blobDiff: blobDiff}
}

// TryPush offers change to the tracker. location is copied into the
// tracker's path backing immediately, since the caller's own buffer is
// only valid until the next Push/Pop. If the tracker declines the
// change — it is not blob-shaped, or it is a Modification and copy
// tracking is disabled — TryPush returns false and the caller must
// emit change itself via its own callback.
func (t *Tracker) TryPush(change diff.Change, location []byte) bool {
	if !change.Mode.IsBlob() {
		return false
	}
	if change.Kind == diff.Modification && t.cfg.Copies == nil {
		return false
	}

	start := len(t.pathBacking)
	t.pathBacking = append(t.pathBacking, location...)
	t.items = append(t.items, item{change: change, start: start, end: len(t.pathBacking)})
	return true
}

// Emit runs the two-phase correlation (identity, then similarity,
// then — if copies are configured — the copy pass) and finally drains
// every item that never matched, in sorted order, as a lone
// Destination. cb's Cancel return stops the walk immediately; Emit
// returns nil either way (cancellation is not an error, matching the
// diff package's policy).
func (t *Tracker) Emit(cb Callback) error {
	sort.Slice(t.items, func(i, j int) bool {
		if c := hash.Compare(t.items[i].change.OID(), t.items[j].change.OID()); c != 0 {
			return c < 0
		}
		if t.items[i].start != t.items[j].start {
			return t.items[i].start < t.items[j].start
		}
		return t.items[i].end < t.items[j].end
	})

	var adds, dels int64
	for _, it := range t.items {
		switch it.change.Kind {
		case diff.Addition:
			adds++
		case diff.Deletion:
			dels++
		}
	}
	overLimit := t.cfg.Limit >= 0 && adds*dels > int64(t.cfg.Limit)

	renamePct := t.cfg.Percentage
	if overLimit {
		renamePct = nil
	}
	cancelled, err := t.findRenames(cb, renamePct)
	if err != nil || cancelled {
		return err
	}

	if t.cfg.Copies != nil {
		copyPct := t.cfg.Copies.Percentage
		if copyPct == nil {
			copyPct = t.cfg.Percentage
		}
		if overLimit {
			copyPct = nil
		}
		cancelled, err = t.findCopies(cb, copyPct)
		if err != nil || cancelled {
			return err
		}
	}

	for i := range t.items {
		if t.items[i].emitted {
			continue
		}
		dest := Destination{Change: t.items[i].change, Location: t.items[i].location(t.pathBacking)}
		if cb(dest, nil) == diff.Cancel {
			return nil
		}
	}
	return nil
}

// findRenames correlates every unemitted Addition with a Deletion,
// by identity then (if percentage allows it) by similarity. An
// Addition with no match is left unemitted, eligible for the copy
// pass or the final drain; the callback fires here only when a match
// was actually found.
func (t *Tracker) findRenames(cb Callback, percentage *float32) (bool, error) {
	accepts := func(c diff.Change) bool { return c.Kind == diff.Deletion }

	for destIdx := 0; destIdx < len(t.items); destIdx++ {
		if t.items[destIdx].emitted || t.items[destIdx].change.Kind != diff.Addition {
			continue
		}

		srcIdx, found, err := t.findMatch(destIdx, percentage, accepts)
		if err != nil {
			return false, err
		}
		if !found {
			continue
		}

		t.items[destIdx].emitted = true
		t.items[srcIdx].emitted = true

		dest := Destination{Change: t.items[destIdx].change, Location: t.items[destIdx].location(t.pathBacking)}
		src := Source{
			Mode:     t.items[srcIdx].change.Mode,
			ID:       t.items[srcIdx].change.OID(),
			Kind:     RenameTarget,
			Location: t.items[srcIdx].location(t.pathBacking),
		}
		if cb(dest, &src) == diff.Cancel {
			return true, nil
		}
	}
	return false, nil
}

// findCopies mirrors findRenames but widens the source predicate to
// any still-unemitted non-Deletion item (so a Modification tracked
// only for copy purposes, or another still-pending Addition, can
// serve as a copy source) and never marks the source emitted: one
// source file may be the origin of many copies.
func (t *Tracker) findCopies(cb Callback, percentage *float32) (bool, error) {
	accepts := func(c diff.Change) bool { return c.Kind != diff.Deletion }

	for destIdx := 0; destIdx < len(t.items); destIdx++ {
		if t.items[destIdx].emitted || t.items[destIdx].change.Kind != diff.Addition {
			continue
		}

		srcIdx, found, err := t.findMatch(destIdx, percentage, accepts)
		if err != nil {
			return false, err
		}
		if !found {
			continue
		}

		t.items[destIdx].emitted = true

		dest := Destination{Change: t.items[destIdx].change, Location: t.items[destIdx].location(t.pathBacking)}
		src := Source{
			Mode:     t.items[srcIdx].change.Mode,
			ID:       t.items[srcIdx].change.OID(),
			Kind:     CopySourceMatch,
			Location: t.items[srcIdx].location(t.pathBacking),
		}
		if cb(dest, &src) == diff.Cancel {
			return true, nil
		}
	}
	return false, nil
}

// findMatch looks for a source item pairing with t.items[destIdx].
// Pass A is an exact content-identity match, narrowed to the sorted
// run of items sharing destIdx's oid via binary search (O(log N + k)
// for k same-oid candidates). Pass B, run only when percentage is
// non-nil and below 1.0, linearly scans every accepts-eligible
// candidate computing line similarity, skipping symlinks and any
// non-blob mode as an invariant (similarity is only meaningful for
// regular/executable file content).
func (t *Tracker) findMatch(destIdx int, percentage *float32, accepts func(diff.Change) bool) (int, bool, error) {
	dest := t.items[destIdx]
	target := dest.change.OID()

	first := sort.Search(len(t.items), func(i int) bool {
		return hash.Compare(t.items[i].change.OID(), target) >= 0
	})
	for i := first; i < len(t.items) && t.items[i].change.OID().Equal(target); i++ {
		if i == destIdx || t.items[i].emitted || !accepts(t.items[i].change) {
			continue
		}
		return i, true, nil
	}

	if percentage == nil || *percentage >= 1.0 {
		return -1, false, nil
	}
	if !dest.change.Mode.IsBlob() || dest.change.Mode == filemode.Symlink {
		return -1, false, nil
	}

	for i := range t.items {
		if i == destIdx || t.items[i].emitted || !accepts(t.items[i].change) {
			continue
		}
		cand := t.items[i]
		if !cand.change.Mode.IsBlob() || cand.change.Mode == filemode.Symlink {
			continue
		}

		sim, err := t.similarity(cand.change.OID(), target)
		if err != nil {
			return -1, false, err
		}
		if sim >= *percentage {
			return i, true, nil
		}
	}
	return -1, false, nil
}

// similarity computes (|before| - removals) / max(|before|, |after|)
// in lines. Two empty blobs are trivially identical (similarity 1.0),
// avoiding division by zero.
func (t *Tracker) similarity(beforeID, afterID hash.ObjectID) (float32, error) {
	beforeObj, ok := t.source.Find(beforeID, nil)
	if !ok {
		return 0, &ErrBlobFetch{ID: beforeID}
	}
	afterObj, ok := t.source.Find(afterID, nil)
	if !ok {
		return 0, &ErrBlobFetch{ID: afterID}
	}

	counts, err := t.blobDiff.DiffTokens(beforeObj.Bytes, afterObj.Bytes, Myers)
	if err != nil {
		return 0, &ErrBlobDiff{Err: err}
	}

	beforeLines := countLines(beforeObj.Bytes)
	afterLines := countLines(afterObj.Bytes)
	denom := beforeLines
	if afterLines > denom {
		denom = afterLines
	}
	if denom == 0 {
		return 1.0, nil
	}
	return float32(beforeLines-counts.Removals) / float32(denom), nil
}
