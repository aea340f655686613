package catalog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/sirupsen/logrus"

	"github.com/anvie/frappe-mcp/internal/stringutil"
)

// ErrManifestMissing is returned when the app's modules.txt cannot be found.
// Catalog construction is aborted; there is nothing sensible to scan.
var ErrManifestMissing = fmt.Errorf("modules.txt not found in the app directory")

// DocType is one discovered domain record type.
type DocType struct {
	Name         string `toml:"name"`
	BackendFile  string `toml:"backend_file"`
	FrontendFile string `toml:"frontend_file,omitempty"`
	MetaFile     string `toml:"meta_file,omitempty"`
	Module       string `toml:"module"`
}

// Module is one named grouping directory listed in modules.txt.
type Module struct {
	Name     string `toml:"name"`
	Location string `toml:"location"`
}

// Catalog is the discovered set of modules and doctypes for one app.
type Catalog struct {
	Modules  []Module
	Doctypes []DocType
}

// metaNameRx pulls the canonical display name out of a DocType schema file,
// e.g. `"name": "Sales Invoice"`.
var metaNameRx = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)

// skippedDirs are directory names never treated as doctype directories.
var skippedDirs = map[string]bool{
	"__pycache__": true,
	".git":        true,
}

// Build discovers modules and doctypes under root's app directory. The app
// directory is <root>/<basename(root)> by Frappe convention; its modules.txt
// lists one module title per line. Recorded file paths are rewritten relative
// to relPrefix so the snapshot stays stable across checkouts.
//
// A missing root or modules.txt is fatal. A doctype directory without its
// <name>.json metadata file is skipped entirely.
func Build(root, relPrefix string) (*Catalog, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("root path %s: %w", root, err)
	}

	appDir := filepath.Join(root, filepath.Base(root))
	manifest := filepath.Join(appDir, "modules.txt")

	f, err := os.Open(manifest)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", manifest, ErrManifestMissing)
		}
		return nil, fmt.Errorf("open %s: %w", manifest, err)
	}
	defer f.Close()

	cat := &Catalog{}

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		title := strings.TrimSpace(sc.Text())
		if title == "" {
			continue
		}

		moduleDir := filepath.Join(appDir, strings.ToLower(title))
		info, err := os.Stat(moduleDir)
		if err != nil || !info.IsDir() {
			continue
		}

		cat.Modules = append(cat.Modules, Module{
			Name:     title,
			Location: relativize(moduleDir, appDir, relPrefix),
		})

		doctypeDir := filepath.Join(moduleDir, "doctype")
		entries, err := os.ReadDir(doctypeDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := entry.Name()
			if name == "" || skippedDirs[name] || strings.HasPrefix(name, ".") {
				continue
			}

			dir := filepath.Join(doctypeDir, name)
			backendFile := filepath.Join(dir, name+".py")
			frontendFile := filepath.Join(dir, name+".js")
			metaFile := filepath.Join(dir, name+".json")

			meta, err := os.ReadFile(metaFile)
			if err != nil {
				// No parseable metadata means no DocType record at all.
				logrus.WithField("doctype_dir", dir).Debug("skipping doctype without metadata")
				continue
			}

			dt := DocType{
				Name:        CanonicalName(meta, name),
				BackendFile: relativize(backendFile, appDir, relPrefix),
				MetaFile:    relativize(metaFile, appDir, relPrefix),
				Module:      title,
			}
			if _, err := os.Stat(frontendFile); err == nil {
				dt.FrontendFile = relativize(frontendFile, appDir, relPrefix)
			}
			cat.Doctypes = append(cat.Doctypes, dt)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", manifest, err)
	}

	return cat, nil
}

// CanonicalName extracts the display name from DocType metadata, falling back
// to a humanized form of the directory name.
func CanonicalName(meta []byte, dirName string) string {
	if m := metaNameRx.FindSubmatch(meta); m != nil {
		return string(m[1])
	}
	return stringutil.CapitalizeWords(dirName)
}

// ByName finds a doctype by display name, case-insensitively.
func (c *Catalog) ByName(name string) (DocType, bool) {
	for _, dt := range c.Doctypes {
		if strings.EqualFold(dt.Name, name) {
			return dt, true
		}
	}
	return DocType{}, false
}

// Suggest returns the cataloged doctype name most similar to name, when the
// Jaro-Winkler similarity clears 0.8. Empty string means no good candidate.
func (c *Catalog) Suggest(name string) string {
	best := ""
	bestScore := float32(0.8)
	for _, dt := range c.Doctypes {
		score, err := edlib.StringsSimilarity(strings.ToLower(name), strings.ToLower(dt.Name), edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score >= bestScore {
			best = dt.Name
			bestScore = score
		}
	}
	return best
}

// relativize rewrites full under base to the caller-supplied virtual prefix.
// Paths outside base are returned untouched.
func relativize(full, base, prefix string) string {
	rel, err := filepath.Rel(base, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(full)
	}
	if prefix == "" {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(filepath.Join(prefix, rel))
}
