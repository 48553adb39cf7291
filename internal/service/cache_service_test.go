package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("redis: connection pool timeout")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis: connection pool timeout")
}

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return nil
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, false)

	require.NoError(t, cache.Set(context.Background(), latestTimetableKey, map[string]string{"id": "tt-1"}, 0))
	assert.Empty(t, repo.values)

	var dest map[string]string
	hit, err := cache.Get(context.Background(), latestTimetableKey, &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceRoundTrip(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCacheRepo(), metrics, 0, nil, true)

	require.NoError(t, cache.Set(context.Background(), timetableCacheKey("tt-1"), map[string]string{"id": "tt-1"}, 0))

	var dest map[string]string
	hit, err := cache.Get(context.Background(), timetableCacheKey("tt-1"), &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "tt-1", dest["id"])

	hit, err = cache.Get(context.Background(), timetableCacheKey("tt-2"), &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	cache := NewCacheService(failingCacheRepo{}, nil, time.Minute, nil, true)

	var dest map[string]string
	hit, err := cache.Get(context.Background(), latestTimetableKey, &dest)
	assert.False(t, hit)
	assert.Error(t, err)
	assert.Error(t, cache.Set(context.Background(), latestTimetableKey, dest, 0))
}

func TestRememberLoadsOnceThenHits(t *testing.T) {
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	loads := 0
	load := func(ctx context.Context) (*map[string]string, error) {
		loads++
		return &map[string]string{"id": "tt-1"}, nil
	}

	first, hit, err := Remember(context.Background(), cache, latestTimetableKey, 0, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "tt-1", (*first)["id"])

	second, hit, err := Remember(context.Background(), cache, latestTimetableKey, 0, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, loads)
}

func TestRememberDegradesOnCacheFailure(t *testing.T) {
	cache := NewCacheService(failingCacheRepo{}, nil, time.Minute, nil, true)
	loadErr := errors.New("db down")

	value, hit, err := Remember(context.Background(), cache, "timetables:id:tt-1", 0, func(ctx context.Context) (*string, error) {
		v := "fresh"
		return &v, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", *value)

	_, _, err = Remember(context.Background(), cache, "timetables:id:tt-2", 0, func(ctx context.Context) (*string, error) {
		return nil, loadErr
	})
	assert.ErrorIs(t, err, loadErr)
}
