package rewrite

import "github.com/coredag/treediff/diff"

// PlainSink receives a change the Tracker declined to hold (anything
// that is not blob-shaped, or a Modification when copy tracking is
// off): these have no rewrite candidacy and are forwarded immediately
// rather than waiting for Emit.
type PlainSink func(dest Destination) diff.Action

// Visitor adapts a Tracker to diff.Visitor, so a TreeDiffer can feed
// it directly. Blob-shaped Additions/Deletions (and, when copies are
// configured, Modifications) are held back for correlation; the
// caller must call Tracker.Emit once the walk completes to receive
// rewrite pairs and the drained leftovers.
type Visitor struct {
	*diff.PathTracker

	tracker *Tracker
	onPlain PlainSink

	cancelled bool
}

// NewVisitor constructs a Visitor tracking paths in mode, feeding
// held-back changes into tracker and forwarding declined ones to
// onPlain immediately.
func NewVisitor(mode diff.Mode, tracker *Tracker, onPlain PlainSink) *Visitor {
	return &Visitor{PathTracker: diff.NewPathTracker(mode), tracker: tracker, onPlain: onPlain}
}

// Cancelled reports whether onPlain ever returned diff.Cancel; once
// true the caller should stop feeding further changes (the embedding
// TreeDiffer.Diff already stopped the walk itself).
func (v *Visitor) Cancelled() bool { return v.cancelled }

func (v *Visitor) Visit(change diff.Change, id diff.PathId) diff.Action {
	loc := v.Resolve(id)
	if v.tracker.TryPush(change, loc) {
		return diff.Continue
	}

	locCopy := append([]byte(nil), loc...)
	action := v.onPlain(Destination{Change: change, Location: locCopy})
	if action == diff.Cancel {
		v.cancelled = true
	}
	return action
}
