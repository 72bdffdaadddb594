package tools

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// truncateHead keeps the first maxLines lines of content, then at most maxBytes
// bytes of those, cut at a rune boundary. A non-positive limit is not applied.
func truncateHead(content string, maxLines, maxBytes int) (output string, truncated bool) {
	output = content
	if maxLines > 0 {
		if end := lineEnd(output, maxLines); end >= 0 {
			output = output[:end]
			truncated = true
		}
	}
	if maxBytes > 0 && len(output) > maxBytes {
		cut := maxBytes
		for cut > 0 && !utf8.RuneStart(output[cut]) {
			cut--
		}
		output = output[:cut]
		truncated = true
	}
	return output, truncated
}

// lineEnd returns the offset of the n-th newline, or -1 if content has fewer.
func lineEnd(content string, n int) int {
	offset := 0
	for range n {
		i := strings.IndexByte(content[offset:], '\n')
		if i < 0 {
			return -1
		}
		offset += i + 1
	}
	return offset - 1
}

// truncateOutput shortens a tool output and notes how much was dropped.
func truncateOutput(output string, maxLines, maxBytes int) string {
	head, truncated := truncateHead(output, maxLines, maxBytes)
	if !truncated {
		return output
	}
	return fmt.Sprintf("%s\n[output truncated: showing %d of %d bytes]", head, len(head), len(output))
}
