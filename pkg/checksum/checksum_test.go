package checksum_test

import (
	"strings"
	"testing"

	"github.com/agentsync-dev/agentsync/pkg/checksum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf_Deterministic(t *testing.T) {
	a := checksum.Of([]byte("hello world"))
	b := checksum.Of([]byte("hello world"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.Equal(t, strings.ToLower(a), a, "digest must be lowercase hex")
}

func TestOf_DistinctContent(t *testing.T) {
	assert.NotEqual(t, checksum.Of([]byte("a")), checksum.Of([]byte("b")))
	assert.NotEqual(t, checksum.Of(nil), checksum.Of([]byte{0}))
}

func TestOfString_MatchesBytes(t *testing.T) {
	s := "café ☕"
	assert.Equal(t, checksum.Of([]byte(s)), checksum.OfString(s))
}

func TestShortTag(t *testing.T) {
	full := checksum.Of([]byte("content"))
	tag := checksum.ShortTag([]byte("content"))
	require.Len(t, tag, checksum.ShortTagLen)
	assert.True(t, strings.HasPrefix(full, tag))
}

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty", nil, false},
		{"plain_text", []byte("# Agent definition\nname: reviewer\n"), false},
		{"utf8_text", []byte("naïve café — résumé"), false},
		{"nul_byte", []byte{'P', 'K', 0, 3}, true},
		{"invalid_utf8", []byte{0xff, 0xfe, 0x41}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checksum.IsBinary(tt.data))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", checksum.Unknown},
		{"whitespace", "   \t", checksum.Unknown},
		{"sentinel", "unknown", checksum.Unknown},
		{"sentinel_mixed_case", "UnKnOwN", checksum.Unknown},
		{"sentinel_padded", "  unknown  ", checksum.Unknown},
		{"uppercase_hex", "ABCDEF012345", "abcdef012345"},
		{"already_normal", "abc123", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checksum.Normalize(tt.raw))
		})
	}
}

func TestIsUnknown(t *testing.T) {
	assert.True(t, checksum.IsUnknown(""))
	assert.True(t, checksum.IsUnknown("unknown"))
	assert.False(t, checksum.IsUnknown("abc123"))
}

func TestEqual_UnknownNeverMatches(t *testing.T) {
	// Two unknowns are never assumed identical.
	assert.False(t, checksum.Equal("", ""))
	assert.False(t, checksum.Equal("unknown", "unknown"))
	assert.False(t, checksum.Equal("abc", ""))
	assert.False(t, checksum.Equal("", "abc"))
}

func TestEqual_NormalizedComparison(t *testing.T) {
	assert.True(t, checksum.Equal("ABC123", "abc123"))
	assert.True(t, checksum.Equal(" abc123 ", "abc123"))
	assert.False(t, checksum.Equal("abc123", "abc124"))
}
