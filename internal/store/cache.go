package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"fanlink/internal/core"
)

// resultCache is a thread-safe hot cache in front of SQLite. The Bloom
// filter answers definite misses without touching the LRU; false positives
// just fall through to the database.
type resultCache struct {
	bloom    *bloom.BloomFilter
	lru      *lru.Cache[string, *core.Record]
	mutex    sync.RWMutex
	capacity int
	fpRate   float64
}

const (
	defaultCacheCapacity = 1024
	defaultBloomFPRate   = 0.001
)

func newResultCache(capacity int, fpRate float64) *resultCache {
	// lru.New rejects non-positive sizes; clamp instead of carrying a nil
	// cache into get/put.
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = defaultBloomFPRate
	}

	lruCache, _ := lru.New[string, *core.Record](capacity)

	return &resultCache{
		bloom:    bloom.NewWithEstimates(uint(capacity), fpRate),
		lru:      lruCache,
		capacity: capacity,
		fpRate:   fpRate,
	}
}

// get returns the cached record for an identity key, if any. A negative
// Bloom answer is authoritative.
func (c *resultCache) get(identityKey string) (*core.Record, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.bloom.TestString(identityKey) {
		return nil, false
	}
	return c.lru.Get(identityKey)
}

// mayContain reports whether the identity key could be present in the
// backing store. Used to skip SQLite reads on definite misses.
func (c *resultCache) mayContain(identityKey string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.bloom.TestString(identityKey)
}

func (c *resultCache) put(identityKey string, rec *core.Record) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.bloom.AddString(identityKey)
	c.lru.Add(identityKey, rec)
}

func (c *resultCache) size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lru.Len()
}
