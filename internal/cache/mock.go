package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/harwood/paralegal/internal/models"
)

// MockCache implements Cache for testing.
type MockCache struct {
	GetFunc    func(ctx context.Context, key string) (*models.AnalysisResult, error)
	SetFunc    func(ctx context.Context, key string, result *models.AnalysisResult, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
	HasFunc    func(ctx context.Context, key string) bool
	ClearFunc  func(ctx context.Context) error
	StatsFunc  func(ctx context.Context) (*Stats, error)
}

// NewMockCache creates a new mock cache for testing.
func NewMockCache() *MockCache {
	return &MockCache{}
}

// Get implements Cache.
func (m *MockCache) Get(ctx context.Context, key string) (*models.AnalysisResult, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return nil, nil
}

// Set implements Cache.
func (m *MockCache) Set(ctx context.Context, key string, result *models.AnalysisResult, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, result, ttl)
	}
	return nil
}

// Delete implements Cache.
func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

// Has implements Cache.
func (m *MockCache) Has(ctx context.Context, key string) bool {
	if m.HasFunc != nil {
		return m.HasFunc(ctx, key)
	}
	return false
}

// Clear implements Cache.
func (m *MockCache) Clear(ctx context.Context) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	return nil
}

// Stats implements Cache.
func (m *MockCache) Stats(ctx context.Context) (*Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &Stats{}, nil
}

// FailingCache is a Cache whose every operation fails. It exercises the
// degraded path where the orchestrator must treat cache errors as misses.
type FailingCache struct{}

// Get implements Cache.
func (FailingCache) Get(_ context.Context, key string) (*models.AnalysisResult, error) {
	return nil, &CacheError{Op: "get", Key: key, Err: fmt.Errorf("cache unavailable")}
}

// Set implements Cache.
func (FailingCache) Set(_ context.Context, key string, _ *models.AnalysisResult, _ time.Duration) error {
	return &CacheError{Op: "set", Key: key, Err: fmt.Errorf("cache unavailable")}
}

// Delete implements Cache.
func (FailingCache) Delete(_ context.Context, key string) error {
	return &CacheError{Op: "delete", Key: key, Err: fmt.Errorf("cache unavailable")}
}

// Has implements Cache.
func (FailingCache) Has(_ context.Context, _ string) bool { return false }

// Clear implements Cache.
func (FailingCache) Clear(_ context.Context) error {
	return &CacheError{Op: "clear", Key: "", Err: fmt.Errorf("cache unavailable")}
}

// Stats implements Cache.
func (FailingCache) Stats(_ context.Context) (*Stats, error) {
	return nil, &CacheError{Op: "stats", Key: "", Err: fmt.Errorf("cache unavailable")}
}
