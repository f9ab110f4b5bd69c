package lmapi

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestSignature verifies the LMv1 signature against known-good values
// computed with an independent implementation of the scheme.
func TestSignature(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		verb     string
		epoch    string
		body     string
		path     string
		expected string
	}{
		{
			name:     "GET without body",
			key:      "test-access-key",
			verb:     "GET",
			epoch:    "1700000000000",
			body:     "",
			path:     "/device/devices",
			expected: "MGM5ZDQxMDRkNmRmYTZmN2Y0YTJiNGJmYTI5NDA5ZDM5NjljYjQwMGY2NWFmMjJhNmYzODJmY2ZiMTViNzcwMQ==",
		},
		{
			name:     "POST with body",
			key:      "secret",
			verb:     "POST",
			epoch:    "1700000000000",
			body:     `{"name":"web"}`,
			path:     "/device/groups",
			expected: "ZjY4ZDgwZmExNGM2OTdlZjU5MzI5YzgxMWU0M2ExMDk3OTU1ZjNlZmEwMmJjYjE1YzUyMjdhNDZhMWZjMDY4NA==",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Signature(tt.key, tt.verb, tt.epoch, tt.body, tt.path)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// TestSignatureExcludesQuery ensures the query string never affects the
// signature: only the resource path is signed.
func TestSignatureExcludesQuery(t *testing.T) {
	withQuery := Signature("key", "GET", "1700000000000", "", "/device/devices")
	assert.Equal(t, withQuery, Signature("key", "GET", "1700000000000", "", "/device/devices"))
	assert.NotEqual(t, withQuery, Signature("key", "GET", "1700000000000", "", "/device/devices?filter=name:x"))
}

// TestAuthHeader checks the header layout and timestamp encoding.
func TestAuthHeader(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	header := AuthHeader("my-id", "test-access-key", "GET", "", "/device/devices", now)

	parts := strings.Split(strings.TrimPrefix(header, "LMv1 "), ":")
	assert.True(t, strings.HasPrefix(header, "LMv1 "))
	assert.Len(t, parts, 3)
	assert.Equal(t, "my-id", parts[0])
	assert.Equal(t, "MGM5ZDQxMDRkNmRmYTZmN2Y0YTJiNGJmYTI5NDA5ZDM5NjljYjQwMGY2NWFmMjJhNmYzODJmY2ZiMTViNzcwMQ==", parts[1])
	assert.Equal(t, "1700000000000", parts[2])
}
