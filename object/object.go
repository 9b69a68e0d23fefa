// Package object defines the tree-entry data model and the
// ObjectSource / TreeIter collaborator contracts the differ consumes.
// Decoding of loose/pack storage is out of scope here; this package
// only knows how to read the bytes of an already decoded tree object.
package object

import "github.com/coredag/treediff/hash"

// Kind tags the type of a decoded object.
type Kind uint8

const (
	KindCommit Kind = iota
	KindTree
	KindBlob
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindTree:
		return "tree"
	case KindBlob:
		return "blob"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Object is a decoded object's kind and payload. Bytes borrows from
// the scratch buffer passed to ObjectSource.Find and is only valid
// until the next call on the same source.
type Object struct {
	Kind  Kind
	Bytes []byte
}

// ObjectSource resolves an ObjectID to its decoded bytes. It is the
// sole collaborator the differ requires for reading the object
// database; pack/loose decoding and delta reconstruction are its
// responsibility, not this package's.
type ObjectSource interface {
	// Find looks up id, decoding into scratch (which Find may grow
	// and return a sub-slice of). ok is false if id is not present;
	// errors at the storage layer are folded into ok==false.
	Find(id hash.ObjectID, scratch []byte) (obj Object, ok bool)
}
