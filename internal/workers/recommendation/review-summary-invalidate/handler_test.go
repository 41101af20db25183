// internal/workers/recommendation/review-summary-invalidate/handler_test.go
package reviewsummaryinvalidate

import (
	"context"
	"errors"
	"testing"
	"time"

	"moodbrew/internal/cache"
	"moodbrew/internal/common/config"
	apperrors "moodbrew/internal/common/errors"
	"moodbrew/internal/common/logger"
	"moodbrew/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cacheInvalidator invalidates a real memory-backed summary cache.
type cacheInvalidator struct {
	cache *cache.Cache[models.ReviewSummaryResult]
}

func (c cacheInvalidator) InvalidateReviews(ctx context.Context, subjectID string) (int, error) {
	return c.cache.InvalidatePrefix(ctx, cache.ReviewPrefix(subjectID))
}

type failingInvalidator struct{}

func (failingInvalidator) InvalidateReviews(context.Context, string) (int, error) {
	return 0, errors.New("redis: connection refused")
}

func TestHandler_Execute_InvalidatesSubjectOnly(t *testing.T) {
	store := cache.NewMemoryStore[models.ReviewSummaryResult]()
	c := cache.New[models.ReviewSummaryResult]("summaries", store, 15*time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()
	c.Put(ctx, cache.ReviewKey("cafe-1", []string{"r1"}), models.ReviewSummaryResult{Summary: "a"})
	c.Put(ctx, cache.ReviewKey("cafe-1", []string{"r1", "r2"}), models.ReviewSummaryResult{Summary: "b"})
	c.Put(ctx, cache.ReviewKey("cafe-12", []string{"r9"}), models.ReviewSummaryResult{Summary: "c"})

	h := NewHandler(LoadConfig(config.WorkerConfig{}), cacheInvalidator{cache: c}, logger.NewTestLogger(t))
	output, err := h.Execute(ctx, &Input{SubjectID: "cafe-1"})

	require.NoError(t, err)
	assert.Equal(t, &Output{SubjectID: "cafe-1", Invalidated: 2}, output)
	assert.Equal(t, 1, store.Len())
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		engine   Invalidator
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{name: "missing subject", engine: failingInvalidator{}, input: &Input{}, wantCode: apperrors.ErrCodeInvalidInput},
		{name: "cache failure", engine: failingInvalidator{}, input: &Input{SubjectID: "cafe-1"}, wantCode: apperrors.ErrCodeCacheUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(LoadConfig(config.WorkerConfig{Timeout: 500}), tt.engine, logger.NewTestLogger(t))

			_, err := h.Execute(context.Background(), tt.input)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}
