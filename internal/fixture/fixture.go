// Package fixture provides a trivial in-memory ObjectSource and tree
// builders shared by the test suites of the diff, rewrite, and
// pipeline packages, mirroring go-git's internal/test helper package.
package fixture

import (
	"sort"

	"github.com/coredag/treediff/filemode"
	"github.com/coredag/treediff/hash"
	"github.com/coredag/treediff/object"
)

// MemSource is an ObjectSource backed by a plain map. It never
// evicts and performs no decompression: a stand-in for the real
// pack/loose decoding layer, which lives outside this module.
type MemSource struct {
	objs map[string]object.Object
}

func NewMemSource() *MemSource {
	return &MemSource{objs: make(map[string]object.Object)}
}

func (m *MemSource) Find(id hash.ObjectID, scratch []byte) (object.Object, bool) {
	o, ok := m.objs[id.String()]
	return o, ok
}

func (m *MemSource) Put(id hash.ObjectID, kind object.Kind, data []byte) {
	m.objs[id.String()] = object.Object{Kind: kind, Bytes: data}
}

// Blob hashes content with a SHA1 hasher and stores it as a blob,
// returning its id.
func (m *MemSource) Blob(content string) hash.ObjectID {
	h := hash.NewSHA1Hasher()
	h.Reset("blob", int64(len(content)))
	h.Write([]byte(content))
	id := h.Sum()
	m.Put(id, object.KindBlob, []byte(content))
	return id
}

// Entry is a convenience builder for a tree entry: a name plus either
// a blob's content (for a file) or a nested set of entries (for a
// subtree).
type Entry struct {
	Name    string
	Mode    filemode.EntryMode
	Content string // for blob-ish modes
	Sub     []Entry
}

// Tree hashes and stores entries (recursively building any nested
// subtrees) and returns the resulting tree's id.
func (m *MemSource) Tree(entries []Entry) hash.ObjectID {
	built := make([]object.TreeEntry, 0, len(entries))
	for _, e := range entries {
		mode := e.Mode
		var id hash.ObjectID
		if len(e.Sub) > 0 || mode == filemode.Tree {
			mode = filemode.Tree
			id = m.Tree(e.Sub)
		} else {
			if mode == filemode.Empty {
				mode = filemode.Blob
			}
			id = m.Blob(e.Content)
		}
		built = append(built, object.TreeEntry{Name: e.Name, Mode: mode, ID: id})
	}
	sort.Slice(built, func(i, j int) bool {
		return object.CompareEntryNames(built[i], built[j]) < 0
	})
	data := object.EncodeTree(built)
	h := hash.NewSHA1Hasher()
	h.Reset("tree", int64(len(data)))
	h.Write(data)
	id := h.Sum()
	m.Put(id, object.KindTree, data)
	return id
}

// EmptyTree returns the id of the empty tree, storing it if needed.
func (m *MemSource) EmptyTree() hash.ObjectID {
	return m.Tree(nil)
}
