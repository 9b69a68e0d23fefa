package object

import (
	"bytes"
	"fmt"

	"github.com/coredag/treediff/filemode"
	"github.com/coredag/treediff/hash"
)

// TreeEntry is a single named entry of a tree object: a filename (no
// NUL, no '/'), a mode, and the id of the object it points to.
type TreeEntry struct {
	Name string
	Mode filemode.EntryMode
	ID   hash.ObjectID
}

// sortKey returns the bytes a TreeEntry sorts by: its name, with a
// trailing '/' appended when the entry is a subtree. This governs the
// interleaving of a file "x" against a directory "x/", and the
// differ's merge-walk depends on it holding for every tree it reads.
func (e TreeEntry) sortKey() []byte {
	if e.Mode.IsTree() {
		return []byte(e.Name + "/")
	}
	return []byte(e.Name)
}

// CompareEntryNames orders two tree entries by the format's sort key.
func CompareEntryNames(a, b TreeEntry) int {
	return bytes.Compare(a.sortKey(), b.sortKey())
}

// TreeIter is a forward, non-restartable cursor over the sorted
// entries of a single tree object.
type TreeIter interface {
	// Next advances and returns the next entry, or ok==false once
	// exhausted.
	Next() (entry TreeEntry, ok bool, err error)
}

// ErrDecode is returned when tree bytes are malformed.
type ErrDecode struct {
	ID     hash.ObjectID
	Detail string
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("object: cannot decode tree %s: %s", e.ID, e.Detail)
}

// treeIter decodes entries lazily from a tree object's canonical
// byte encoding: a sequence of `<mode-octal> SP <name> NUL <raw-id-bytes>`
// records, sorted per CompareEntryNames. idSize is threaded through
// explicitly since a tree's on-disk bytes carry no width tag of
// their own: the same encoding holds ids of either supported width.
type treeIter struct {
	id     hash.ObjectID
	buf    []byte
	idSize int
}

// NewTreeIter constructs a TreeIter over obj, which must have
// Kind == KindTree. idSize selects the ObjectID width (20 or 32)
// used to decode each entry's trailing id bytes.
func NewTreeIter(id hash.ObjectID, obj Object, idSize int) (TreeIter, error) {
	if obj.Kind != KindTree {
		return nil, &ErrDecode{ID: id, Detail: fmt.Sprintf("not a tree (kind=%s)", obj.Kind)}
	}
	return &treeIter{id: id, buf: obj.Bytes, idSize: idSize}, nil
}

func (it *treeIter) Next() (TreeEntry, bool, error) {
	if len(it.buf) == 0 {
		return TreeEntry{}, false, nil
	}

	sp := bytes.IndexByte(it.buf, ' ')
	if sp < 0 {
		return TreeEntry{}, false, &ErrDecode{ID: it.id, Detail: "missing mode separator"}
	}
	mode, err := filemode.New(string(it.buf[:sp]))
	if err != nil {
		return TreeEntry{}, false, &ErrDecode{ID: it.id, Detail: err.Error()}
	}

	rest := it.buf[sp+1:]
	nul := bytes.IndexByte(rest, 0)
	if nul < 0 {
		return TreeEntry{}, false, &ErrDecode{ID: it.id, Detail: "missing name terminator"}
	}
	name := string(rest[:nul])

	idBytes := rest[nul+1:]
	if len(idBytes) < it.idSize {
		return TreeEntry{}, false, &ErrDecode{ID: it.id, Detail: "truncated object id"}
	}
	id, ok := hash.FromBytes(idBytes[:it.idSize])
	if !ok {
		return TreeEntry{}, false, &ErrDecode{ID: it.id, Detail: "unsupported object id width"}
	}

	it.buf = idBytes[it.idSize:]
	return TreeEntry{Name: name, Mode: mode, ID: id}, true, nil
}

// EncodeTree renders entries (which must already be sorted per
// CompareEntryNames) into the canonical byte encoding NewTreeIter
// reads back. Used by tests and by callers assembling synthetic
// fixtures for an in-memory ObjectSource.
func EncodeTree(entries []TreeEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.Write(e.Mode.Bytes())
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.ID.Bytes())
	}
	return buf.Bytes()
}
