// Package cache provides bounded caching of analysis results keyed by
// document content.
package cache

import (
	"context"
	"time"

	"github.com/harwood/paralegal/internal/models"
)

// Cache defines the interface for caching analysis results. Implementations
// must be safe for concurrent use and must never alias stored results with
// caller-held values; a miss is (nil, nil), not an error.
type Cache interface {
	// Get retrieves a cached result, or nil when the key is absent or expired.
	Get(ctx context.Context, key string) (*models.AnalysisResult, error)

	// Set stores a result under key. A ttl of zero or less means the entry
	// never expires.
	Set(ctx context.Context, key string, result *models.AnalysisResult, ttl time.Duration) error

	// Delete removes the entry for key if present.
	Delete(ctx context.Context, key string) error

	// Has reports whether a live entry exists for key without touching
	// recency or statistics.
	Has(ctx context.Context, key string) bool

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Stats returns a snapshot of cache statistics.
	Stats(ctx context.Context) (*Stats, error)
}

// Stats contains cache statistics.
type Stats struct {
	// TotalEntries is the number of live cached entries
	TotalEntries int

	// HitRate is the cache hit rate (0-1)
	HitRate float64

	// TotalHits is the number of cache hits
	TotalHits int64

	// TotalMisses is the number of cache misses
	TotalMisses int64

	// Evictions is the number of entries evicted to respect the size bound
	Evictions int64

	// OldestEntry is the age of the oldest live entry
	OldestEntry time.Duration
}

// CacheError represents a cache-specific error.
type CacheError struct {
	Err error
	Op  string
	Key string
}

func (e *CacheError) Error() string {
	return "cache " + e.Op + " failed for key " + e.Key + ": " + e.Err.Error()
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
