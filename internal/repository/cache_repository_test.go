package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "reports:x", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "reports:x", []string{"a"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "reports:*"))
	assert.NoError(t, repo.Close())
}
