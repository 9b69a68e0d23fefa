package hash

import (
	stdhash "hash"
	"strconv"

	"github.com/pjbgf/sha1cd"
	"golang.org/x/crypto/blake2b"
)

// Hasher incrementally computes an ObjectID over the content passed
// to Write, Git-style: callers are expected to first feed the
// object's type/size header, then its payload (see Reset).
type Hasher struct {
	stdhash.Hash
	ext bool
}

// NewSHA1Hasher returns a Hasher producing 20-byte SHA1ObjectID
// values, using the collision-detecting sha1cd implementation go-git
// itself registers as its default SHA1 algorithm.
func NewSHA1Hasher() *Hasher {
	return &Hasher{Hash: sha1cd.New()}
}

// NewExtHasher returns a Hasher producing 32-byte ExtObjectID values
// backed by blake2b-256, the extended-hash variant ObjectID's data
// model reserves alongside SHA1.
func NewExtHasher() *Hasher {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors for a non-nil key exceeding 64
		// bytes; we never pass a key.
		panic("hash: blake2b init: " + err.Error())
	}
	return &Hasher{Hash: h, ext: true}
}

// Reset clears the underlying hash state and writes the object
// header `"<kind> <size>\x00"`, mirroring the canonical content hash
// preimage used across the format.
func (h *Hasher) Reset(kind string, size int64) {
	h.Hash.Reset()
	h.Write([]byte(kind))
	h.Write([]byte(" "))
	h.Write([]byte(strconv.FormatInt(size, 10)))
	h.Write([]byte{0})
}

// Sum finalizes the hash into an ObjectID of the width this Hasher
// was constructed for.
func (h *Hasher) Sum() ObjectID {
	sum := h.Hash.Sum(nil)
	id, ok := FromBytes(sum)
	if !ok {
		panic("hash: unexpected digest size")
	}
	return id
}
