package camunda

import (
	"context"
	"fmt"
	"testing"
	"time"

	apperrors "moodbrew/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return &Client{config: &ClientConfig{
		RetryConfig: &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}}
}

func TestExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	attempts := 0
	result, err := testClient().ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		attempts++
		if attempts < 3 {
			return nil, fmt.Errorf("rpc error: code = Unavailable")
		}
		return "ok", nil
	}, "publish")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	attempts := 0
	_, err := testClient().ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		attempts++
		return nil, fmt.Errorf("invalid argument")
	}, "publish")

	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode("EXTERNAL_SERVICE_ERROR"), stdErr.Code)
}

func TestExecuteWithRetry_MapsTimeouts(t *testing.T) {
	_, err := testClient().ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		return nil, fmt.Errorf("context deadline exceeded")
	}, "complete")

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode("TIMEOUT_ERROR"), stdErr.Code)
	assert.Contains(t, stdErr.Details, "after 2 attempts")
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(fmt.Errorf("connection refused")))
	assert.True(t, isRetryableZeebeError(fmt.Errorf("Deadline Exceeded")))
	assert.False(t, isRetryableZeebeError(fmt.Errorf("NOT_FOUND")))
}
