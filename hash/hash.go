// Package hash provides the content-address type used throughout
// treediff: a fixed-width, totally ordered ObjectID.
package hash

import (
	"bytes"
	"encoding/hex"
	"sort"
)

const (
	// SHA1Size is the width, in bytes, of the short object id variant.
	SHA1Size = 20
	// ExtSize is the width, in bytes, of the extended object id variant.
	ExtSize = 32

	SHA1HexSize = SHA1Size * 2
	ExtHexSize  = ExtSize * 2
)

// ObjectID is a fixed-width content hash. Equality is bitwise and
// ordering is lexicographic byte comparison, per the format's sort
// invariant.
type ObjectID interface {
	// Size returns the width of the hash in bytes (20 or 32).
	Size() int
	// IsZero reports whether every byte of the hash is zero.
	IsZero() bool
	// Compare compares the hash's bytes with b, à la bytes.Compare.
	Compare(b []byte) int
	// Equal reports bitwise equality with another ObjectID of the
	// same width. IDs of differing width are never equal.
	Equal(ObjectID) bool
	// Bytes returns the raw hash bytes.
	Bytes() []byte
	// String returns the lowercase hexadecimal form.
	String() string
}

// SHA1ObjectID is the 20-byte ObjectID variant.
type SHA1ObjectID [SHA1Size]byte

func (h SHA1ObjectID) Size() int            { return SHA1Size }
func (h SHA1ObjectID) IsZero() bool         { return h == SHA1ObjectID{} }
func (h SHA1ObjectID) Compare(b []byte) int { return bytes.Compare(h[:], b) }
func (h SHA1ObjectID) Bytes() []byte        { return h[:] }
func (h SHA1ObjectID) String() string       { return hex.EncodeToString(h[:]) }

func (h SHA1ObjectID) Equal(o ObjectID) bool {
	other, ok := o.(SHA1ObjectID)
	return ok && h == other
}

// ExtObjectID is the 32-byte ObjectID variant (the "extended hash"
// the format reserves alongside SHA1, e.g. for blake2b/SHA-256).
type ExtObjectID [ExtSize]byte

func (h ExtObjectID) Size() int            { return ExtSize }
func (h ExtObjectID) IsZero() bool         { return h == ExtObjectID{} }
func (h ExtObjectID) Compare(b []byte) int { return bytes.Compare(h[:], b) }
func (h ExtObjectID) Bytes() []byte        { return h[:] }
func (h ExtObjectID) String() string       { return hex.EncodeToString(h[:]) }

func (h ExtObjectID) Equal(o ObjectID) bool {
	other, ok := o.(ExtObjectID)
	return ok && h == other
}

// FromBytes infers the ObjectID width from len(b) and copies it into
// a new, owned ObjectID. The second return value is false if b has
// neither a supported width.
func FromBytes(b []byte) (ObjectID, bool) {
	switch len(b) {
	case SHA1Size:
		var h SHA1ObjectID
		copy(h[:], b)
		return h, true
	case ExtSize:
		var h ExtObjectID
		copy(h[:], b)
		return h, true
	default:
		return nil, false
	}
}

// FromHex parses a hexadecimal string, inferring width from its
// length.
func FromHex(s string) (ObjectID, bool) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return FromBytes(b)
}

// MustFromHex is FromHex, panicking on invalid input. Intended for
// tests and fixture construction.
func MustFromHex(s string) ObjectID {
	h, ok := FromHex(s)
	if !ok {
		panic("hash: invalid hex object id " + s)
	}
	return h
}

// Sort sorts ids in increasing lexicographic order, in place.
func Sort(ids []ObjectID) {
	sort.Sort(ObjectIDs(ids))
}

// ObjectIDs attaches the methods of sort.Interface to []ObjectID,
// sorting in increasing lexicographic order.
type ObjectIDs []ObjectID

func (p ObjectIDs) Len() int           { return len(p) }
func (p ObjectIDs) Less(i, j int) bool { return p[i].Compare(p[j].Bytes()) < 0 }
func (p ObjectIDs) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// Compare orders two ObjectIDs, shorter-width ids first when widths
// differ (widths never differ within a single tree format in
// practice, but the comparator must still total-order mixed sets for
// RewriteTracker's sort step).
func Compare(a, b ObjectID) int {
	if a.Size() != b.Size() {
		if a.Size() < b.Size() {
			return -1
		}
		return 1
	}
	return a.Compare(b.Bytes())
}
