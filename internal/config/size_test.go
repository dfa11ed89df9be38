package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"10MB", 10 << 20, false},
		{"1B", 1, false},
		{"0B", 0, false},
		{"512KB", 512 << 10, false},
		{"2GB", 2 << 30, false},
		{"1TB", 1 << 40, false},
		{"10mb", 10 << 20, false},
		{" 10MB ", 10 << 20, false},
		{"10 MB", 0, true},
		{"10", 0, true},
		{"MB", 0, true},
		{"-1MB", 0, true},
		{"10.5MB", 0, true},
		{"10PB", 0, true},
		{"", 0, true},
		{"9999999999999TB", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
		} else {
			assert.NoError(t, err, "input %q", tt.input)
			assert.Equal(t, tt.want, got, "input %q", tt.input)
		}
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "10MB", FormatSize(10<<20))
	assert.Equal(t, "1KB", FormatSize(1024))
	assert.Equal(t, "1023B", FormatSize(1023))
	assert.Equal(t, "1GB", FormatSize(1<<30))
	assert.Equal(t, "0B", FormatSize(0))
}
