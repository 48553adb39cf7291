package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]any
	assert.ErrorIs(t, repo.Get(ctx, "timetables:latest", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "timetables:latest", map[string]any{"id": "tt-1"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "timetables:*"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
