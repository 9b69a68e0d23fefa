package pipeline

import (
	"github.com/golang/groupcache/lru"

	"github.com/coredag/treediff/hash"
	"github.com/coredag/treediff/object"
)

// PackCache is a per-worker decorator bounding resident decompressed
// pack bytes, built on groupcache's plain (non-concurrent) lru.Cache.
// Its non-concurrency is exactly why it must never be shared across
// workers: two goroutines calling Find on the same *PackCache race on
// the underlying list/map. Entry-count eviction (lru.Cache's native
// policy) doesn't bound memory by size, so PackCache tracks resident
// bytes itself and evicts oldest entries until back under budget on
// every insert.
type PackCache struct {
	lru           *lru.Cache
	maxBytes      int64
	residentBytes int64
	source        object.ObjectSource
}

// NewPackCache wraps source with a cache admitting up to maxBytes of
// decompressed object payloads.
func NewPackCache(source object.ObjectSource, maxBytes int64) *PackCache {
	c := &PackCache{source: source, maxBytes: maxBytes}
	c.lru = &lru.Cache{
		OnEvicted: func(key lru.Key, value interface{}) {
			c.residentBytes -= int64(len(value.(object.Object).Bytes))
		},
	}
	return c
}

func (c *PackCache) Find(id hash.ObjectID, scratch []byte) (object.Object, bool) {
	key := lru.Key(id.String())
	if v, ok := c.lru.Get(key); ok {
		return v.(object.Object), true
	}

	obj, ok := c.source.Find(id, scratch)
	if !ok {
		return obj, false
	}
	owned := object.Object{Kind: obj.Kind, Bytes: append([]byte(nil), obj.Bytes...)}
	c.insert(key, owned)
	return owned, true
}

func (c *PackCache) insert(key lru.Key, obj object.Object) {
	size := int64(len(obj.Bytes))
	for c.residentBytes+size > c.maxBytes && c.lru.Len() > 0 {
		c.lru.RemoveOldest()
	}
	c.lru.Add(key, obj)
	c.residentBytes += size
}
