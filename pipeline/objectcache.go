package pipeline

import (
	"github.com/dgraph-io/ristretto/v2"

	"github.com/coredag/treediff/hash"
	"github.com/coredag/treediff/object"
)

// ObjectCache is a per-worker, byte-cost-bounded decorator over an
// object.ObjectSource, caching decoded payloads by the resident bytes
// of Object.Bytes rather than by entry count. It is built fresh for
// every worker (NewObjectCache), never shared: ristretto's internal
// synchronization would make sharing safe, but per-worker caches keep
// hit rates from one pair's working set from evicting another's.
type ObjectCache struct {
	cache  *ristretto.Cache[string, object.Object]
	source object.ObjectSource
}

// NewObjectCache wraps source with a cache admitting up to maxBytes
// of decoded object payloads.
func NewObjectCache(source object.ObjectSource, maxBytes int64) (*ObjectCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, object.Object]{
		NumCounters: maxBytes / 100 * 10, // ~10 counters per expected 100-byte object, ristretto's own sizing rule of thumb
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &ObjectCache{cache: cache, source: source}, nil
}

func (c *ObjectCache) Find(id hash.ObjectID, scratch []byte) (object.Object, bool) {
	if obj, ok := c.cache.Get(id.String()); ok {
		return obj, true
	}
	obj, ok := c.source.Find(id, scratch)
	if !ok {
		return obj, false
	}
	owned := object.Object{Kind: obj.Kind, Bytes: append([]byte(nil), obj.Bytes...)}
	c.cache.Set(id.String(), owned, int64(len(owned.Bytes)))
	return owned, true
}

// Close releases the cache's background goroutines. Callers must call
// it once a worker is done with its ObjectCache.
func (c *ObjectCache) Close() {
	c.cache.Close()
}
