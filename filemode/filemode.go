// Package filemode defines the entry modes a tree entry can carry:
// Tree, Blob, BlobExecutable, Symlink, Commit. Modelled on go-git's
// plumbing/filemode package.
package filemode

import (
	"fmt"
	"strconv"
)

// EntryMode is the type of a single tree entry.
type EntryMode uint32

const (
	Empty          EntryMode = 0
	Tree           EntryMode = 0o40000
	Blob           EntryMode = 0o100644
	BlobExecutable EntryMode = 0o100755
	Symlink        EntryMode = 0o120000
	Commit         EntryMode = 0o160000
)

// IsBlob reports whether the mode designates a blob-backed entry:
// regular file, executable, or symlink. Commit (submodule gitlink)
// and Tree are not blobs.
func (m EntryMode) IsBlob() bool {
	switch m {
	case Blob, BlobExecutable, Symlink:
		return true
	default:
		return false
	}
}

// IsTree reports whether the mode designates a subtree.
func (m EntryMode) IsTree() bool {
	return m == Tree
}

// New parses the octal mode string as used in tree object encodings
// (e.g. "40000", "100644").
func New(s string) (EntryMode, error) {
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return Empty, fmt.Errorf("filemode: invalid mode %q: %w", s, err)
	}
	return EntryMode(n), nil
}

// String renders the mode in its canonical six-digit octal form.
func (m EntryMode) String() string {
	return fmt.Sprintf("%06o", uint32(m))
}

// Bytes returns the mode's ASCII octal representation without
// leading zero padding, as written into a tree object's entry
// header.
func (m EntryMode) Bytes() []byte {
	return []byte(strconv.FormatUint(uint64(m), 8))
}
