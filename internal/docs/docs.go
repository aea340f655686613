// Package docs indexes a directory of markdown guides and answers
// title/content searches over them.
package docs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/anvie/frappe-mcp/internal/search"
)

// ErrNotFound reports a document path that is not in the library.
var ErrNotFound = errors.New("document not found")

// DefaultSnippetLength caps rendered snippet size in bytes.
const DefaultSnippetLength = 150

// Entry is one markdown document, loaded at build time.
type Entry struct {
	Path     string // slash-separated, relative to the library dir
	Title    string
	Category string

	content string
}

// Result is one search hit.
type Result struct {
	Path     string  `toml:"path" json:"path"`
	Title    string  `toml:"title" json:"title"`
	Category string  `toml:"category" json:"category"`
	Score    float64 `toml:"score" json:"score"`
	Snippet  string  `toml:"snippet" json:"snippet"`
}

// Library is an in-memory index over a docs directory. Build it once and
// query as often as needed; it never re-reads the directory.
type Library struct {
	dir     string
	entries []Entry
}

// Build loads every .md file below dir. Entries are kept in path order so
// equal-score search results come back deterministically. A missing or
// unreadable dir is an error; individual unreadable files are skipped.
func Build(dir string) (*Library, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("docs dir %s: %w", dir, err)
	}

	lib := &Library{dir: dir}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			logrus.WithField("path", path).WithError(readErr).Debug("skipping unreadable doc")
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = d.Name()
		}
		rel = filepath.ToSlash(rel)
		content := string(data)
		lib.entries = append(lib.entries, Entry{
			Path:     rel,
			Title:    extractTitle(content, rel),
			Category: extractCategory(rel),
			content:  content,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"dir": dir, "docs": len(lib.entries)}).Debug("docs library built")
	return lib, nil
}

// Len reports how many documents were indexed.
func (l *Library) Len() int { return len(l.entries) }

// Search finds documents matching query. An empty category matches all
// categories; otherwise the category filter is case-insensitive. Exact mode
// is a case-insensitive substring test against title and content, scored a
// flat 100. Fuzzy mode scores title and content separately, doubles the
// title score, and keeps the higher of the two. Results are sorted by score
// descending and truncated to limit (DefaultLimit when <= 0).
func (l *Library) Search(query, category string, fuzzy bool, limit int) []Result {
	if limit <= 0 {
		limit = search.DefaultLimit
	}

	var results []Result
	for i := range l.entries {
		e := &l.entries[i]
		if category != "" && !strings.EqualFold(e.Category, category) {
			continue
		}

		var score float64
		if fuzzy {
			score = search.FuzzyScore(query, e.Title) * 2
			if cs := search.FuzzyScore(query, e.content); cs > score {
				score = cs
			}
			if score <= 0 {
				continue
			}
		} else {
			q := strings.ToLower(query)
			if !strings.Contains(strings.ToLower(e.Title), q) &&
				!strings.Contains(strings.ToLower(e.content), q) {
				continue
			}
			score = 100.0
		}

		results = append(results, Result{
			Path:     e.Path,
			Title:    e.Title,
			Category: e.Category,
			Score:    score,
			Snippet:  extractSnippet(e.content, query, DefaultSnippetLength),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Get returns the raw markdown of one document by its library path.
func (l *Library) Get(path string) (string, error) {
	for i := range l.entries {
		if l.entries[i].Path == path {
			return l.entries[i].content, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

// List groups document paths by category, optionally filtered to one
// category (case-insensitive).
func (l *Library) List(category string) map[string][]string {
	out := make(map[string][]string)
	for i := range l.entries {
		e := &l.entries[i]
		if category != "" && !strings.EqualFold(e.Category, category) {
			continue
		}
		out[e.Category] = append(out[e.Category], e.Path)
	}
	return out
}

// extractTitle takes the first H1 heading, falling back to the filename
// with underscores spaced out and each word capitalized.
func extractTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	base := strings.TrimSuffix(filepath.Base(path), ".md")
	words := strings.Fields(strings.ReplaceAll(base, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// extractCategory is the top-level directory of the path, or "general" for
// docs at the library root.
func extractCategory(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return "general"
}

// extractSnippet pulls a window of content around the first occurrence of
// query, strips markdown markers and collapses whitespace. When the query
// does not occur literally, the first two non-heading lines stand in.
func extractSnippet(content, query string, maxLength int) string {
	pos := strings.Index(strings.ToLower(content), strings.ToLower(query))
	if pos < 0 {
		var lead []string
		for _, line := range strings.Split(content, "\n") {
			if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
				continue
			}
			lead = append(lead, line)
			if len(lead) == 2 {
				break
			}
		}
		return clampSnippet(strings.Join(lead, " "), maxLength)
	}

	start := pos - 50
	if start < 0 {
		start = 0
	}
	end := pos + len(query) + 100
	if end > len(content) {
		end = len(content)
	}

	out := strings.TrimSpace(content[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(content) {
		out += "..."
	}

	out = strings.NewReplacer("###", "", "##", "", "#", "", "**", "", "```", "", "\n", " ").Replace(out)
	out = strings.Join(strings.Fields(out), " ")
	return clampSnippet(out, maxLength)
}

// clampSnippet truncates s to at most maxLength bytes, backing off to the
// nearest rune boundary so the cut never leaves a partial UTF-8 sequence.
func clampSnippet(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	cut := maxLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
