package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"#FFD700", 0xFFD700, false},
		{"00ffff", 0x00FFFF, false},
		{" #9146ff ", 0x9146FF, false},
		{"#FFF", 0, true},
		{"#GGGGGG", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatHexColor(t *testing.T) {
	assert.Equal(t, "#ffd700", FormatHexColor(0xFFD700))
	assert.Equal(t, "#00000a", FormatHexColor(10))
	assert.Equal(t, "", FormatHexColor(0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel…", Truncate("hello", 4))
	assert.Equal(t, "h", Truncate("hello", 1))
}

func TestStopwatch(t *testing.T) {
	sw := NewStopwatch()
	assert.GreaterOrEqual(t, sw.Seconds(), 0.0)
	sw.Reset()
	assert.GreaterOrEqual(t, int64(sw.Elapsed()), int64(0))
}
