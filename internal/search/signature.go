package search

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// SignatureMatch is one function definition found by name.
type SignatureMatch struct {
	File      string // relative to the engine root
	Line      int    // 1-based, where the definition starts
	Signature string // the matched text, multi-line params included
}

// FindSignatures locates function definitions named name across the tree.
// Python files match `def name(...)` (optionally async); JS/TS files match
// both `function name(...) {` declarations and `const name = (...) => {`
// arrow assignments, optionally exported. Parameter lists may span lines.
func (e *Engine) FindSignatures(name string, scope Scope, ignore []string) ([]SignatureMatch, error) {
	esc := regexp.QuoteMeta(name)
	pyRx, err := regexp.Compile(`(?ms)^[ \t]*(?:async[ \t]+)?def[ \t]+` + esc + `\s*\([^)]*?\)\s*:`)
	if err != nil {
		return nil, fmt.Errorf("compiling signature pattern: %w", err)
	}
	jsRx, err := regexp.Compile(
		`(?ms)^[ \t]*(?:export[ \t]+)?(?:async[ \t]+)?function[ \t]+` + esc + `\s*\([^)]*?\)\s*\{` +
			`|^[ \t]*(?:export[ \t]+)?(?:const|let|var)[ \t]+` + esc + `\s*=\s*\([^)]*?\)\s*=>[ \t]*\{`)
	if err != nil {
		return nil, fmt.Errorf("compiling signature pattern: %w", err)
	}

	var found []SignatureMatch
	err = e.walkSources(extensionsFor(scope), ignore, func(rel string, content string) {
		rx := jsRx
		if filepath.Ext(rel) == ".py" {
			rx = pyRx
		}
		starts := lineStarts(content)
		for _, loc := range rx.FindAllStringIndex(content, -1) {
			found = append(found, SignatureMatch{
				File:      rel,
				Line:      lineForOffset(starts, loc[0]) + 1,
				Signature: strings.TrimRight(content[loc[0]:loc[1]], " \t\r\n"),
			})
		}
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func lineStarts(content string) []int {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineForOffset returns the 0-based line index containing the byte offset.
func lineForOffset(starts []int, offset int) int {
	i := sort.SearchInts(starts, offset)
	if i < len(starts) && starts[i] == offset {
		return i
	}
	return i - 1
}
