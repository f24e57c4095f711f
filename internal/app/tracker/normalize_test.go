package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "github.com", want: "github.com", wantOK: true},
		{in: "www.GitHub.com", want: "github.com", wantOK: true},
		{in: "  youtube.com  ", want: "youtube.com", wantOK: true},
		{in: "https://www.youtube.com/watch?v=1", want: "youtube.com", wantOK: true},
		{in: "http://localhost:3000/page", want: "localhost", wantOK: true},
		{in: "docs.python.org/3/library", want: "docs.python.org", wantOK: true},
		{in: "example.com:8080", want: "example.com", wantOK: true},
		{in: "example.com.", want: "example.com", wantOK: true},
		{in: "developer.chrome.com", want: "developer.chrome.com", wantOK: true},
		{in: "", wantOK: false},
		{in: "   ", wantOK: false},
		{in: "www.", wantOK: false},
		{in: "https://", wantOK: false},
		{in: "user@example.com", wantOK: false},
		{in: "two words.com", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeDomain(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2024-02-29"))
	assert.True(t, ValidDate("2025-12-31"))

	assert.False(t, ValidDate("2023-02-29"))
	assert.False(t, ValidDate("2025-1-5"))
	assert.False(t, ValidDate("05/01/2025"))
	assert.False(t, ValidDate("2025-01-05T00:00:00Z"))
	assert.False(t, ValidDate(""))
}

func TestParseClassification(t *testing.T) {
	c, ok := ParseClassification("productive")
	assert.True(t, ok)
	assert.Equal(t, CategoryProductive, c)

	c, ok = ParseClassification("unproductive")
	assert.True(t, ok)
	assert.Equal(t, CategoryUnproductive, c)

	for _, bad := range []string{"neutral", "Productive", ""} {
		_, ok := ParseClassification(bad)
		assert.False(t, ok, bad)
	}
}
