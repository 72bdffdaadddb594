package tools

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateHead(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		maxLines  int
		maxBytes  int
		want      string
		truncated bool
	}{
		{"no limits", "a\nb\nc", 0, 0, "a\nb\nc", false},
		{"within", "a\nb", 5, 100, "a\nb", false},
		{"exact lines", "a\nb", 2, 0, "a\nb", false},
		{"lines", "a\nb\nc", 2, 0, "a\nb", true},
		{"bytes inside a line", "aaaa\nbbbb\ncccc", 0, 7, "aaaa\nbb", true},
		{"single long line", "abcdefgh", 0, 4, "abcd", true},
		{"rune boundary", "héllo", 0, 2, "h", true},
		{"lines then bytes", "abcdef\nxyz", 1, 3, "abc", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := truncateHead(tt.content, tt.maxLines, tt.maxBytes)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.truncated, truncated)
		})
	}
}

func TestTruncateOutput(t *testing.T) {
	assert.Equal(t, "short", truncateOutput("short", 10, 100))

	line := `{"items":[` + strings.Repeat(`"x",`, 20) + `"x"]}`
	got := truncateOutput(line, 0, 16)
	assert.Equal(t, line[:16]+"\n[output truncated: showing 16 of 95 bytes]", got)
}
