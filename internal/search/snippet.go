package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSnippetContext is the number of lines shown on each side of a hit.
const DefaultSnippetContext = 2

// Snippet renders the match with surrounding context, re-reading the file
// from disk. Each line carries a right-aligned line number and the hit line
// is marked with an arrow. Returns "" if the file cannot be read or the line
// is out of range.
func (e *Engine) Snippet(m Match, context int) string {
	if context < 0 {
		context = DefaultSnippetContext
	}
	data, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(m.File)))
	if err != nil {
		return ""
	}
	lines := strings.Split(string(data), "\n")
	if m.Line < 1 || m.Line > len(lines) {
		return ""
	}

	start := m.Line - 1 - context
	if start < 0 {
		start = 0
	}
	end := m.Line + context
	if end > len(lines) {
		end = len(lines)
	}

	width := len(fmt.Sprintf("%d", end))
	var b strings.Builder
	for i := start; i < end; i++ {
		marker := " "
		if i+1 == m.Line {
			marker = "→"
		}
		fmt.Fprintf(&b, "%*d: %s %s\n", width, i+1, marker, lines[i])
	}
	return strings.TrimRight(b.String(), "\n")
}
