package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/pkg/logger"
)

// DefaultMaxEntries bounds the memory cache when no explicit limit is given.
const DefaultMaxEntries = 256

// MemoryCache implements Cache with an in-memory LRU bounded by max entries.
// Results are deep-copied on both Set and Get so no caller ever holds a
// reference into the cache.
type MemoryCache struct {
	logger     logger.Logger
	entries    map[string]*list.Element
	lru        *list.List
	hits       int64
	misses     int64
	evictions  int64
	maxEntries int
	mu         sync.RWMutex
}

// memoryEntry is the LRU element payload. A zero expiresAt means the entry
// never expires.
type memoryEntry struct {
	createdAt time.Time
	expiresAt time.Time
	result    *models.AnalysisResult
	key       string
}

// NewMemoryCache creates a bounded in-memory cache. A maxEntries of zero or
// less selects DefaultMaxEntries.
func NewMemoryCache(maxEntries int, log logger.Logger) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
		maxEntries: maxEntries,
		logger:     log,
	}
}

// Get retrieves a cached result and marks it most recently used. Expired
// entries are removed on access and reported as misses.
func (mc *MemoryCache) Get(ctx context.Context, key string) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CacheError{Op: "get", Key: key, Err: err}
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	elem, ok := mc.entries[key]
	if !ok {
		mc.misses++
		return nil, nil
	}

	entry := elem.Value.(*memoryEntry)
	if entry.expired(time.Now()) {
		mc.removeLocked(elem)
		mc.misses++
		return nil, nil
	}

	mc.lru.MoveToFront(elem)
	mc.hits++
	return entry.result.Clone(), nil
}

// Set stores a deep copy of the result under key, evicting the least
// recently used entry when the cache is full.
func (mc *MemoryCache) Set(ctx context.Context, key string, result *models.AnalysisResult, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return &CacheError{Op: "set", Key: key, Err: err}
	}
	if result == nil {
		return &CacheError{Op: "set", Key: key, Err: fmt.Errorf("nil result")}
	}

	now := time.Now()
	entry := &memoryEntry{
		key:       key,
		result:    result.Clone(),
		createdAt: now,
	}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if elem, ok := mc.entries[key]; ok {
		elem.Value = entry
		mc.lru.MoveToFront(elem)
		return nil
	}

	for mc.lru.Len() >= mc.maxEntries {
		oldest := mc.lru.Back()
		if oldest == nil {
			break
		}
		evicted := oldest.Value.(*memoryEntry)
		mc.removeLocked(oldest)
		mc.evictions++
		if mc.logger != nil {
			mc.logger.Debug("cache entry evicted", "key", evicted.key)
		}
	}

	mc.entries[key] = mc.lru.PushFront(entry)
	return nil
}

// Delete removes the entry for key if present.
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return &CacheError{Op: "delete", Key: key, Err: err}
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if elem, ok := mc.entries[key]; ok {
		mc.removeLocked(elem)
	}
	return nil
}

// Has reports whether a live entry exists for key. It does not update
// recency or hit statistics.
func (mc *MemoryCache) Has(ctx context.Context, key string) bool {
	if ctx.Err() != nil {
		return false
	}

	mc.mu.RLock()
	defer mc.mu.RUnlock()

	elem, ok := mc.entries[key]
	if !ok {
		return false
	}
	return !elem.Value.(*memoryEntry).expired(time.Now())
}

// Clear removes all entries. Statistics counters are preserved.
func (mc *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CacheError{Op: "clear", Key: "", Err: err}
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.entries = make(map[string]*list.Element)
	mc.lru.Init()
	return nil
}

// Stats returns a snapshot of cache statistics.
func (mc *MemoryCache) Stats(ctx context.Context) (*Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CacheError{Op: "stats", Key: "", Err: err}
	}

	mc.mu.RLock()
	defer mc.mu.RUnlock()

	stats := &Stats{
		TotalEntries: len(mc.entries),
		TotalHits:    mc.hits,
		TotalMisses:  mc.misses,
		Evictions:    mc.evictions,
	}
	if total := mc.hits + mc.misses; total > 0 {
		stats.HitRate = float64(mc.hits) / float64(total)
	}

	now := time.Now()
	for _, elem := range mc.entries {
		entry := elem.Value.(*memoryEntry)
		if entry.expired(now) {
			continue
		}
		if age := now.Sub(entry.createdAt); age > stats.OldestEntry {
			stats.OldestEntry = age
		}
	}
	return stats, nil
}

func (mc *MemoryCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	mc.lru.Remove(elem)
	delete(mc.entries, entry.key)
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}
