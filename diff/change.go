package diff

import (
	"fmt"

	"github.com/coredag/treediff/filemode"
	"github.com/coredag/treediff/hash"
)

// ChangeKind tags which of the three shapes a Change carries.
type ChangeKind uint8

const (
	Addition ChangeKind = iota
	Deletion
	Modification
)

func (k ChangeKind) String() string {
	switch k {
	case Addition:
		return "Addition"
	case Deletion:
		return "Deletion"
	case Modification:
		return "Modification"
	default:
		return "Unknown"
	}
}

// Change is the unit of emission: an Addition, Deletion, or
// Modification at a single path. PreviousMode/PreviousID
// are only meaningful for Modification; Addition and Deletion only
// populate Mode/ID, which always describes the side that exists
// (the added entry, or the deleted one).
type Change struct {
	Kind ChangeKind

	PreviousMode filemode.EntryMode
	PreviousID   hash.ObjectID

	Mode filemode.EntryMode
	ID   hash.ObjectID
}

// OID returns the content id a RewriteTracker correlates changes by:
// the added/current id for Addition and Modification, the deleted id
// for Deletion.
func (c Change) OID() hash.ObjectID {
	return c.ID
}

func (c Change) String() string {
	return fmt.Sprintf("<%s %s>", c.Kind, c.ID)
}

func newAddition(mode filemode.EntryMode, id hash.ObjectID) Change {
	return Change{Kind: Addition, Mode: mode, ID: id}
}

func newDeletion(mode filemode.EntryMode, id hash.ObjectID) Change {
	return Change{Kind: Deletion, Mode: mode, ID: id}
}

func newModification(prevMode filemode.EntryMode, prevID hash.ObjectID, mode filemode.EntryMode, id hash.ObjectID) Change {
	return Change{Kind: Modification, PreviousMode: prevMode, PreviousID: prevID, Mode: mode, ID: id}
}

// Action is returned from Visitor.Visit to control whether the walk
// continues.
type Action uint8

const (
	Continue Action = iota
	Cancel
)

// Visitor is the embedder-supplied callback surface for a tree walk.
type Visitor interface {
	// Push records name as the current entry's path component,
	// returning a handle to resolve its location with. Called before
	// every emitted Change and for every subtree the walk enters;
	// entries pruned because both sides have the same mode and id are
	// never pushed.
	Push(name string) PathId
	// Pop undoes the most recent unmatched Push.
	Pop()
	// Visit reports change at the path identified by id, returning
	// whether the walk should continue or cancel.
	Visit(change Change, id PathId) Action
}
