package refs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"github.com/anvie/frappe-mcp/internal/catalog"
)

// Options controls one scan pass.
type Options struct {
	// RetainUnknown keeps self-record accesses whose owning doctype could
	// not be resolved in the Unknown bucket instead of dropping them.
	RetainUnknown bool

	// IgnorePatterns are doublestar globs (relative to the scan root)
	// excluded from the walk.
	IgnorePatterns []string
}

// Scan walks root once and builds the usage index: explicit bindings, inline
// constructor chains, the self-record heuristic and type-hint declarations all
// contribute occurrences. A missing root is fatal; an unreadable file is
// skipped.
//
// Bindings are file-local and last-write-wins; there is no control-flow,
// shadowing or cross-file awareness.
func Scan(root string, opts Options) (*UsageIndex, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("root path %s: %w", root, err)
	}

	idx := NewUsageIndex()
	detected := make(map[string]bool)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logrus.WithField("path", path).WithError(err).Debug("skipping unreadable entry")
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr == nil && ignored(filepath.ToSlash(rel), opts.IgnorePatterns) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		idx.Stats.FilesScanned++
		if filepath.Ext(path) != ".py" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logrus.WithField("path", path).WithError(err).Debug("skipping unreadable file")
			return nil
		}
		idx.Stats.PyFiles++

		scanFile(idx, detected, path, string(data), opts)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", root, walkErr)
	}

	idx.Stats.DoctypesDetected = len(detected)
	return idx, nil
}

// scanFile contributes one file's occurrences to the index.
func scanFile(idx *UsageIndex, detected map[string]bool, path, content string, opts Options) {
	pstr := filepath.ToSlash(path)
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	// Self-record resolution: a file at .../doctype/<dt>/<dt>.py is assumed
	// to manipulate its own doctype through the conventional `doc` variable.
	// The canonical name comes from the sibling metadata file, with the same
	// naming rules the catalog applies.
	selfDoctype := ""
	if dtDir := inferPrimaryDoctype(path); dtDir != "" {
		metaPath := strings.TrimSuffix(path, ".py") + ".json"
		if meta, err := os.ReadFile(metaPath); err == nil {
			selfDoctype = catalog.CanonicalName(meta, dtDir)
		}
	}

	// Typed field declarations first: they exist even when no runtime access
	// ever touches the field in this file.
	if selfDoctype != "" {
		scanTypeHints(idx, detected, pstr, selfDoctype, lines)
	}

	// Binding pass. Later assignments to the same identifier overwrite
	// earlier ones before any access is collected.
	bindings := make(map[string]string)
	for _, line := range lines {
		for _, b := range matchBindings(line) {
			bindings[b[0]] = b[1]
			detected[b[1]] = true
		}
	}

	// Access pass over known variables.
	for ln, line := range lines {
		for _, p := range accessPatterns {
			for _, m := range matchAccesses(p.rx, line) {
				dt, ok := bindings[m.variable]
				if !ok {
					continue
				}
				idx.add(dt, m.field, Occurrence{File: pstr, Line: ln + 1, Var: m.variable, Kind: p.kind})
			}
		}

		// Inline constructor chains carry their own doctype.
		for _, im := range matchInline(line) {
			idx.add(im[0], im[1], Occurrence{File: pstr, Line: ln + 1, Var: InlineVar, Kind: KindInline})
			detected[im[0]] = true
		}
	}

	// Self-record access pass for the conventional variable.
	if selfDoctype != "" {
		collectVarAccesses(lines, SelfVar, func(ln int, kind, field string) {
			idx.add(selfDoctype, field, Occurrence{File: pstr, Line: ln, Var: SelfVar, Kind: kind})
		})
		detected[selfDoctype] = true
	} else if opts.RetainUnknown {
		collectVarAccesses(lines, SelfVar, func(ln int, kind, field string) {
			idx.addUnknown(pstr, field, Occurrence{File: pstr, Line: ln, Var: SelfVar, Kind: kind})
		})
	}
}

// collectVarAccesses runs the six access patterns restricted to one variable.
func collectVarAccesses(lines []string, variable string, emit func(line int, kind, field string)) {
	for ln, line := range lines {
		for _, p := range accessPatterns {
			for _, m := range matchAccesses(p.rx, line) {
				if m.variable != variable {
					continue
				}
				emit(ln+1, p.kind, m.field)
			}
		}
	}
}

// inferPrimaryDoctype returns the doctype directory name when path matches
// .../doctype/<dt>/<dt>.py. The rightmost match wins when several exist.
func inferPrimaryDoctype(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i := len(parts) - 3; i >= 0; i-- {
		if parts[i] != "doctype" {
			continue
		}
		dtDir := parts[i+1]
		file := parts[i+2]
		if strings.TrimSuffix(file, ".py") == dtDir && strings.HasSuffix(file, ".py") {
			return dtDir
		}
	}
	return ""
}

func ignored(relPath string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, relPath); err == nil && ok {
			return true
		}
	}
	return false
}
