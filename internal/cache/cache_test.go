package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/pkg/logger"
)

func newTestResult(t *testing.T, documentID string) *models.AnalysisResult {
	t.Helper()

	result := models.NewAnalysisResult(documentID, "document-analyzer", "2.0.0")
	require.NoError(t, result.MarkRunning())
	issue := models.NewLegalIssue(models.IssueTypeContradiction, models.SeverityHigh, "Conflict", "Conflicting statements")
	issue.Confidence = 0.9
	result.Issues = append(result.Issues, *issue)
	result.Metadata["document_id"] = documentID
	require.NoError(t, result.MarkCompleted())
	return result
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	mc := NewMemoryCache(4, logger.NewMockLogger())
	ctx := t.Context()

	result := newTestResult(t, "doc-1")
	require.NoError(t, mc.Set(ctx, "key-1", result, time.Minute))

	got, err := mc.Get(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, result.ID, got.ID)
	assert.Equal(t, result.Issues, got.Issues)
	assert.NotSame(t, result, got)
}

func TestMemoryCache_GetMiss(t *testing.T) {
	mc := NewMemoryCache(4, logger.NewMockLogger())

	got, err := mc.Get(t.Context(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)

	stats, err := mc.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalMisses)
	assert.Equal(t, int64(0), stats.TotalHits)
}

func TestMemoryCache_DeepCopyIsolation(t *testing.T) {
	mc := NewMemoryCache(4, logger.NewMockLogger())
	ctx := t.Context()

	result := newTestResult(t, "doc-1")
	require.NoError(t, mc.Set(ctx, "key-1", result, 0))

	// Mutating the original after Set must not reach the cached entry.
	result.Issues[0].Title = "mutated"

	first, err := mc.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "Conflict", first.Issues[0].Title)

	// Mutating a returned copy must not reach subsequent readers.
	first.Issues[0].Title = "mutated again"
	first.Metadata["injected"] = true

	second, err := mc.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "Conflict", second.Issues[0].Title)
	assert.NotContains(t, second.Metadata, "injected")
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	mc := NewMemoryCache(4, logger.NewMockLogger())
	ctx := t.Context()

	require.NoError(t, mc.Set(ctx, "short", newTestResult(t, "doc-1"), 10*time.Millisecond))
	require.True(t, mc.Has(ctx, "short"))

	time.Sleep(25 * time.Millisecond)

	assert.False(t, mc.Has(ctx, "short"))
	got, err := mc.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, got)

	stats, err := mc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
	assert.Equal(t, int64(1), stats.TotalMisses)
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	mc := NewMemoryCache(4, logger.NewMockLogger())
	ctx := t.Context()

	require.NoError(t, mc.Set(ctx, "forever", newTestResult(t, "doc-1"), 0))
	time.Sleep(5 * time.Millisecond)

	got, err := mc.Get(ctx, "forever")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	mc := NewMemoryCache(2, logger.NewMockLogger())
	ctx := t.Context()

	require.NoError(t, mc.Set(ctx, "a", newTestResult(t, "doc-a"), 0))
	require.NoError(t, mc.Set(ctx, "b", newTestResult(t, "doc-b"), 0))

	// Touch "a" so "b" becomes least recently used.
	_, err := mc.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, mc.Set(ctx, "c", newTestResult(t, "doc-c"), 0))

	assert.True(t, mc.Has(ctx, "a"))
	assert.False(t, mc.Has(ctx, "b"))
	assert.True(t, mc.Has(ctx, "c"))

	stats, err := mc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, int64(1), stats.Evictions)
}

func TestMemoryCache_UpdateExistingKey(t *testing.T) {
	mc := NewMemoryCache(2, logger.NewMockLogger())
	ctx := t.Context()

	first := newTestResult(t, "doc-1")
	second := newTestResult(t, "doc-2")
	require.NoError(t, mc.Set(ctx, "key", first, 0))
	require.NoError(t, mc.Set(ctx, "key", second, 0))

	got, err := mc.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "doc-2", got.DocumentID)

	stats, err := mc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, int64(0), stats.Evictions)
}

func TestMemoryCache_Clear(t *testing.T) {
	mc := NewMemoryCache(4, logger.NewMockLogger())
	ctx := t.Context()

	require.NoError(t, mc.Set(ctx, "a", newTestResult(t, "doc-a"), 0))
	_, err := mc.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, mc.Clear(ctx))

	assert.False(t, mc.Has(ctx, "a"))
	stats, err := mc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
	assert.Equal(t, int64(1), stats.TotalHits)
}

func TestMemoryCache_Stats(t *testing.T) {
	mc := NewMemoryCache(4, logger.NewMockLogger())
	ctx := t.Context()

	require.NoError(t, mc.Set(ctx, "a", newTestResult(t, "doc-a"), 0))

	_, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	_, err = mc.Get(ctx, "missing")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	stats, err := mc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMisses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.Greater(t, stats.OldestEntry, time.Duration(0))
}

func TestMemoryCache_DefaultMaxEntries(t *testing.T) {
	mc := NewMemoryCache(0, logger.NewMockLogger())
	assert.Equal(t, DefaultMaxEntries, mc.maxEntries)
}

func TestMemoryCache_ContextCanceled(t *testing.T) {
	mc := NewMemoryCache(4, logger.NewMockLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mc.Get(ctx, "key")
	var cacheErr *CacheError
	require.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, "get", cacheErr.Op)
	assert.True(t, errors.Is(err, context.Canceled))

	err = mc.Set(ctx, "key", newTestResult(t, "doc-1"), 0)
	require.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, "set", cacheErr.Op)
}

func TestMemoryCache_SetNilResult(t *testing.T) {
	mc := NewMemoryCache(4, logger.NewMockLogger())

	err := mc.Set(t.Context(), "key", nil, 0)
	var cacheErr *CacheError
	require.ErrorAs(t, err, &cacheErr)
	assert.Contains(t, err.Error(), "nil result")
}

func TestMockCache(t *testing.T) {
	mock := NewMockCache()
	ctx := t.Context()

	got, err := mock.Get(ctx, "anything")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mock.Has(ctx, "anything"))

	stored := newTestResult(t, "doc-1")
	mock.GetFunc = func(_ context.Context, key string) (*models.AnalysisResult, error) {
		if key == "hit" {
			return stored.Clone(), nil
		}
		return nil, fmt.Errorf("boom")
	}

	got, err = mock.Get(ctx, "hit")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)

	_, err = mock.Get(ctx, "other")
	require.Error(t, err)
}

func TestFailingCache(t *testing.T) {
	fc := FailingCache{}
	ctx := t.Context()

	_, err := fc.Get(ctx, "key")
	var cacheErr *CacheError
	require.ErrorAs(t, err, &cacheErr)
	require.Error(t, fc.Set(ctx, "key", newTestResult(t, "doc-1"), 0))
	assert.False(t, fc.Has(ctx, "key"))
}
