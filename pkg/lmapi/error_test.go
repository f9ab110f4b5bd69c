package lmapi

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClassify covers the status/errorCode mapping, including the
// portal's body-level duplicate codes.
func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     int
		expected ErrorKind
	}{
		{"unauthorized", 401, 0, KindAuth},
		{"forbidden", 403, 0, KindAuth},
		{"not found", 404, 0, KindNotFound},
		{"body-level not found", 200, 1404, KindNotFound},
		{"conflict", 409, 0, KindConflict},
		{"duplicate code 1409", 409, 1409, KindConflict},
		{"duplicate code 1400", 400, 1400, KindConflict},
		{"validation", 400, 0, KindValidation},
		{"unprocessable", 422, 0, KindValidation},
		{"rate limited", 429, 0, KindRateLimit},
		{"server error", 500, 0, KindNetwork},
		{"bad gateway", 502, 0, KindNetwork},
		{"teapot", 418, 0, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classify(tt.status, tt.code))
		})
	}
}

func TestErrorRetryable(t *testing.T) {
	assert.True(t, (&Error{Kind: KindNetwork}).Retryable())
	assert.True(t, (&Error{Kind: KindRateLimit}).Retryable())
	assert.False(t, (&Error{Kind: KindConflict}).Retryable())
	assert.False(t, (&Error{Kind: KindAuth}).Retryable())
	assert.False(t, (&Error{Kind: KindValidation}).Retryable())
}

// TestKindOfWrapped verifies classification survives fmt.Errorf %w
// wrapping, which the engine applies for context.
func TestKindOfWrapped(t *testing.T) {
	base := &Error{Kind: KindNotFound, Status: 404, Op: "GET /device/groups"}
	wrapped := fmt.Errorf("resolve path %q: %w", "infra/web", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
	assert.Equal(t, KindUnknown, KindOf(fmt.Errorf("plain error")))
}
