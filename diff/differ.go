// Package diff implements the tree-walk differ: a recursive
// comparator that produces a stream of Change events between two
// tree objects, lazily loading children from an ObjectSource.
package diff

import (
	"github.com/coredag/treediff/diff/internal/frame"
	"github.com/coredag/treediff/hash"
	"github.com/coredag/treediff/object"
)

// TreeDiffer walks two trees and reports the minimal set of Change
// events consistent with the format's sort invariant.
type TreeDiffer struct {
	source object.ObjectSource
	idSize int
}

// New constructs a TreeDiffer over source, decoding ids of the given
// width (hash.SHA1Size or hash.ExtSize).
func New(source object.ObjectSource, idSize int) *TreeDiffer {
	return &TreeDiffer{source: source, idSize: idSize}
}

// Diff walks lhs and rhs, the root tree iterators of the two sides,
// calling visitor for every entry pushed/popped and every emitted
// Change. A visitor returning Cancel stops the walk; Diff still
// returns nil, since cancellation is a deliberate stop, not a
// failure.
func (d *TreeDiffer) Diff(lhs, rhs object.TreeIter, visitor Visitor) error {
	stack := frame.New[*workFrame]()
	stack.Push(&workFrame{lhs: lhs, rhs: rhs})

	for {
		top, ok := stack.Peek()
		if !ok {
			return nil
		}

		result, child, err := d.step(top, visitor)
		if err != nil {
			return err
		}

		switch result {
		case stepCancel:
			return nil
		case stepDone:
			stack.Pop()
			if top.hasPop {
				visitor.Pop()
			}
			if stack.Empty() {
				return nil
			}
		case stepDescend:
			stack.Push(child)
		case stepContinue:
			// top's internal cursors advanced; loop re-peeks it.
		}
	}
}

// DiffIDs resolves lhsID/rhsID to tree objects via the ObjectSource
// and diffs them, the common entry point when the caller only has
// commit/tree ids rather than already-constructed TreeIters.
func (d *TreeDiffer) DiffIDs(lhsID, rhsID hash.ObjectID, visitor Visitor) error {
	lhs, err := d.loadTree(lhsID)
	if err != nil {
		return err
	}
	rhs, err := d.loadTree(rhsID)
	if err != nil {
		return err
	}
	return d.Diff(lhs, rhs, visitor)
}

func (d *TreeDiffer) loadTree(id hash.ObjectID) (object.TreeIter, error) {
	obj, ok := d.source.Find(id, nil)
	if !ok {
		return nil, &ErrTreeNotFound{ID: id}
	}
	return object.NewTreeIter(id, obj, d.idSize)
}

type stepResult int

const (
	stepContinue stepResult = iota
	stepDone
	stepCancel
	stepDescend
)

// workFrame is one level of the explicit work-stack: the merge-walk
// state for a single pair of sibling tree iterators. hasPop records
// whether finishing this frame must be matched with a visitor.Pop()
// call (false only for the root frame, which has no enclosing push).
type workFrame struct {
	lhs, rhs object.TreeIter

	lhsEntry, rhsEntry       object.TreeEntry
	lhsHasEntry, rhsHasEntry bool
	lhsDone, rhsDone         bool

	hasPop bool
}

func (f *workFrame) fill() error {
	if !f.lhsHasEntry && !f.lhsDone {
		e, ok, err := f.lhs.Next()
		if err != nil {
			return err
		}
		if ok {
			f.lhsEntry, f.lhsHasEntry = e, true
		} else {
			f.lhsDone = true
		}
	}
	if !f.rhsHasEntry && !f.rhsDone {
		e, ok, err := f.rhs.Next()
		if err != nil {
			return err
		}
		if ok {
			f.rhsEntry, f.rhsHasEntry = e, true
		} else {
			f.rhsDone = true
		}
	}
	return nil
}

func (f *workFrame) consumeLHS() { f.lhsHasEntry = false }
func (f *workFrame) consumeRHS() { f.rhsHasEntry = false }

// step performs one unit of merge-walk work for f: either pruning a
// pair of identical entries, emitting the Change(s) for one entry (a
// subtree present on only one side expands into one Change per leaf),
// or requesting a child frame be pushed for a matched subtree pair.
func (d *TreeDiffer) step(f *workFrame, visitor Visitor) (stepResult, *workFrame, error) {
	if err := f.fill(); err != nil {
		return stepContinue, nil, err
	}

	switch {
	case !f.lhsHasEntry && !f.rhsHasEntry:
		return stepDone, nil, nil

	case f.lhsHasEntry && !f.rhsHasEntry:
		return d.stepDeletionOnly(f, visitor)

	case !f.lhsHasEntry && f.rhsHasEntry:
		return d.stepAdditionOnly(f, visitor)

	default:
		cmp := object.CompareEntryNames(f.lhsEntry, f.rhsEntry)
		switch {
		case cmp < 0:
			return d.stepDeletionOnly(f, visitor)
		case cmp > 0:
			return d.stepAdditionOnly(f, visitor)
		default:
			return d.stepSameKey(f, visitor)
		}
	}
}

func (d *TreeDiffer) stepDeletionOnly(f *workFrame, visitor Visitor) (stepResult, *workFrame, error) {
	e := f.lhsEntry
	f.consumeLHS()

	if e.Mode.IsTree() {
		cancelled, err := d.expandOneSided(e, Deletion, visitor)
		return resultFor(cancelled), nil, err
	}
	cancelled, err := d.emitLeaf(newDeletion(e.Mode, e.ID), e.Name, visitor)
	return resultFor(cancelled), nil, err
}

func (d *TreeDiffer) stepAdditionOnly(f *workFrame, visitor Visitor) (stepResult, *workFrame, error) {
	e := f.rhsEntry
	f.consumeRHS()

	if e.Mode.IsTree() {
		cancelled, err := d.expandOneSided(e, Addition, visitor)
		return resultFor(cancelled), nil, err
	}
	cancelled, err := d.emitLeaf(newAddition(e.Mode, e.ID), e.Name, visitor)
	return resultFor(cancelled), nil, err
}

func (d *TreeDiffer) stepSameKey(f *workFrame, visitor Visitor) (stepResult, *workFrame, error) {
	lhs, rhs := f.lhsEntry, f.rhsEntry

	switch {
	case lhs.Mode == rhs.Mode:
		if lhs.ID.Equal(rhs.ID) {
			f.consumeLHS()
			f.consumeRHS()
			return stepContinue, nil, nil
		}
		if lhs.Mode.IsTree() {
			child, err := d.descend(lhs, rhs, visitor)
			if err != nil {
				return stepContinue, nil, err
			}
			f.consumeLHS()
			f.consumeRHS()
			return stepDescend, child, nil
		}
		f.consumeLHS()
		f.consumeRHS()
		cancelled, err := d.emitLeaf(newModification(lhs.Mode, lhs.ID, rhs.Mode, rhs.ID), lhs.Name, visitor)
		return resultFor(cancelled), nil, err

	case lhs.Mode.IsBlob() && rhs.Mode.IsBlob():
		f.consumeLHS()
		f.consumeRHS()
		cancelled, err := d.emitLeaf(newModification(lhs.Mode, lhs.ID, rhs.Mode, rhs.ID), lhs.Name, visitor)
		return resultFor(cancelled), nil, err

	case lhs.Mode.IsTree() && !rhs.Mode.IsTree():
		f.consumeLHS()
		f.consumeRHS()
		cancelled, err := d.replaceTreeWithEntry(lhs, rhs, visitor)
		return resultFor(cancelled), nil, err

	case rhs.Mode.IsTree() && !lhs.Mode.IsTree():
		f.consumeLHS()
		f.consumeRHS()
		cancelled, err := d.replaceEntryWithTree(lhs, rhs, visitor)
		return resultFor(cancelled), nil, err

	default:
		f.consumeLHS()
		f.consumeRHS()
		cancelled, err := d.emitLeaf(newModification(lhs.Mode, lhs.ID, rhs.Mode, rhs.ID), lhs.Name, visitor)
		return resultFor(cancelled), nil, err
	}
}

func resultFor(cancelled bool) stepResult {
	if cancelled {
		return stepCancel
	}
	return stepContinue
}

// descend builds a child frame for a matched subtree pair; the
// caller is responsible for pushing it onto the work-stack. The
// single enclosing Push for the pair's shared name happens here;
// Pop happens when the pushed frame later completes (hasPop).
func (d *TreeDiffer) descend(lhs, rhs object.TreeEntry, visitor Visitor) (*workFrame, error) {
	lhsIter, err := d.loadTree(lhs.ID)
	if err != nil {
		return nil, err
	}
	rhsIter, err := d.loadTree(rhs.ID)
	if err != nil {
		return nil, err
	}
	visitor.Push(lhs.Name)
	return &workFrame{lhs: lhsIter, rhs: rhsIter, hasPop: true}, nil
}

// replaceTreeWithEntry handles the same-key, differing-mode case
// where the lhs side is a tree and the rhs side is not: the whole
// lhs subtree is expanded into per-leaf Deletions, followed by a
// single Addition for the rhs entry.
func (d *TreeDiffer) replaceTreeWithEntry(lhs, rhs object.TreeEntry, visitor Visitor) (bool, error) {
	cancelled, err := d.expandOneSided(lhs, Deletion, visitor)
	if err != nil || cancelled {
		return cancelled, err
	}
	return d.emitLeaf(newAddition(rhs.Mode, rhs.ID), rhs.Name, visitor)
}

// replaceEntryWithTree is the symmetric case: a single Deletion for
// the lhs entry, followed by the rhs subtree expanded into per-leaf
// Additions.
func (d *TreeDiffer) replaceEntryWithTree(lhs, rhs object.TreeEntry, visitor Visitor) (bool, error) {
	cancelled, err := d.emitLeaf(newDeletion(lhs.Mode, lhs.ID), lhs.Name, visitor)
	if err != nil || cancelled {
		return cancelled, err
	}
	return d.expandOneSided(rhs, Addition, visitor)
}

// emitLeaf wraps a single Change in its own Push/Pop pair and
// reports whether the visitor cancelled the walk.
func (d *TreeDiffer) emitLeaf(change Change, name string, visitor Visitor) (bool, error) {
	id := visitor.Push(name)
	action := visitor.Visit(change, id)
	visitor.Pop()
	return action == Cancel, nil
}

// expandOneSided recursively enumerates every leaf under entry
// (which must be a Tree) as Deletions or Additions, depth-first,
// with path-correct nesting. This secondary path uses ordinary Go
// recursion: unlike the primary two-sided merge-walk, it never holds
// more than one pending ObjectSource lookup per depth, and tree
// deletions/additions wholesale are the uncommon case in practice.
func (d *TreeDiffer) expandOneSided(entry object.TreeEntry, kind ChangeKind, visitor Visitor) (bool, error) {
	obj, ok := d.source.Find(entry.ID, nil)
	if !ok {
		return false, &ErrTreeNotFound{ID: entry.ID}
	}
	iter, err := object.NewTreeIter(entry.ID, obj, d.idSize)
	if err != nil {
		return false, err
	}

	for {
		e, ok, err := iter.Next()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}

		if e.Mode.IsTree() {
			id := visitor.Push(e.Name)
			cancelled, err := d.expandOneSided(e, kind, visitor)
			visitor.Pop()
			_ = id
			if err != nil || cancelled {
				return cancelled, err
			}
			continue
		}

		var change Change
		if kind == Deletion {
			change = newDeletion(e.Mode, e.ID)
		} else {
			change = newAddition(e.Mode, e.ID)
		}
		cancelled, err := d.emitLeaf(change, e.Name, visitor)
		if err != nil || cancelled {
			return cancelled, err
		}
	}
}
