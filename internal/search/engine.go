package search

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
)

// Scope restricts a search to one side of the app.
type Scope string

const (
	ScopeBackend  Scope = "backend"
	ScopeFrontend Scope = "frontend"
	ScopeAll      Scope = "all"
)

// DefaultLimit bounds result sets when the caller does not.
const DefaultLimit = 50

// fuzzyThreshold discards weak subsequence matches.
const fuzzyThreshold = 20.0

// skipDirs are build/cache/VCS directories never searched.
var skipDirs = map[string]bool{
	"__pycache__":  true,
	"node_modules": true,
	".git":         true,
	"build":        true,
	"dist":         true,
}

// Options tunes one search call.
type Options struct {
	Scope          Scope
	Fuzzy          bool
	Limit          int
	SnippetContext int
	IgnorePatterns []string
}

// Match is one scored hit. Snippet is rendered lazily by Snippet().
type Match struct {
	File    string // relative to the engine root
	Line    int    // 1-based
	Content string // trimmed matching line
	Score   float64
}

// Engine searches an app's source tree. It holds no state between calls;
// every Search is a one-shot sweep over the files on disk.
type Engine struct {
	root string
}

// New returns an engine rooted at the app directory.
func New(root string) *Engine {
	return &Engine{root: root}
}

func extensionsFor(scope Scope) []string {
	switch scope {
	case ScopeBackend:
		return []string{".py"}
	case ScopeFrontend:
		return []string{".js", ".ts", ".html", ".css"}
	default:
		return []string{".py", ".js", ".css", ".ts", ".json", ".html"}
	}
}

// Search finds pattern across the tree. Exact mode matches the literal
// pattern case-insensitively on word boundaries and scores every hit 100;
// fuzzy mode scores each line by subsequence similarity. Results are sorted
// by score descending (stable, discovery order breaks ties) and truncated to
// the limit.
func (e *Engine) Search(pattern string, opts Options) ([]Match, error) {
	if _, err := os.Stat(e.root); err != nil {
		return nil, fmt.Errorf("search root %s: %w", e.root, err)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	exts := extensionsFor(opts.Scope)

	var exact *regexp.Regexp
	if !opts.Fuzzy {
		var err error
		exact, err = regexp.Compile(`(?i)\b` + regexp.QuoteMeta(pattern) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling search pattern: %w", err)
		}
	}

	var matches []Match
	err := e.walkSources(exts, opts.IgnorePatterns, func(rel string, content string) {
		for i, line := range strings.Split(content, "\n") {
			if opts.Fuzzy {
				score := FuzzyScore(pattern, line)
				if score > fuzzyThreshold {
					matches = append(matches, Match{
						File:    rel,
						Line:    i + 1,
						Content: strings.TrimSpace(line),
						Score:   score,
					})
				}
				continue
			}
			for range exact.FindAllStringIndex(line, -1) {
				matches = append(matches, Match{
					File:    rel,
					Line:    i + 1,
					Content: strings.TrimSpace(line),
					Score:   100.0,
				})
			}
		}
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// walkSources visits every searchable file below the root, applying the
// extension allow-list, hidden-path rule, built-in skip set and configured
// ignore globs. Unreadable files are skipped.
func (e *Engine) walkSources(exts []string, ignore []string, visit func(rel, content string)) error {
	return filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != e.root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		ext := filepath.Ext(path)
		allowed := false
		for _, x := range exts {
			if x == ext {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil
		}

		rel, relErr := filepath.Rel(e.root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		for _, p := range ignore {
			if ok, mErr := doublestar.Match(p, rel); mErr == nil && ok {
				return nil
			}
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			logrus.WithField("path", path).WithError(readErr).Debug("skipping unreadable file")
			return nil
		}
		visit(rel, string(data))
		return nil
	})
}
