// Package analysis ties the catalog and reference scanner together into a
// persisted snapshot and serves lookups over it.
package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/anvie/frappe-mcp/internal/catalog"
	"github.com/anvie/frappe-mcp/internal/config"
	"github.com/anvie/frappe-mcp/internal/refs"
)

// Analysis is one full snapshot of an app: its catalog plus the field-usage
// index. SymbolRefs is nil when the usage scan failed; catalog data is still
// usable on its own.
type Analysis struct {
	Doctypes   []catalog.DocType `toml:"doctypes"`
	Modules    []catalog.Module  `toml:"modules"`
	SymbolRefs *refs.UsageIndex  `toml:"symbol_refs,omitempty"`
}

// Run builds a fresh snapshot for the configured app. A catalog failure is
// fatal; a usage-scan failure degrades to a catalog-only snapshot.
func Run(cfg *config.Config) (*Analysis, error) {
	cat, err := catalog.Build(cfg.AppRoot(), cfg.AppRelativePath)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Doctypes: cat.Doctypes,
		Modules:  cat.Modules,
	}

	idx, err := refs.Scan(cfg.AppRoot(), refs.Options{
		RetainUnknown:  cfg.UnknownFields == config.UnknownRetain,
		IgnorePatterns: cfg.IgnorePatterns,
	})
	if err != nil {
		logrus.WithError(err).Warn("field-usage scan failed, keeping catalog-only snapshot")
		return a, nil
	}
	a.SymbolRefs = idx
	return a, nil
}

// Save writes the snapshot as TOML through a temp file in the target
// directory, renamed into place. Map keys come out sorted, so two runs over
// an unchanged tree produce byte-identical files.
func (a *Analysis) Save(path string) error {
	data, err := toml.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("analysis dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*.toml")
	if err != nil {
		return fmt.Errorf("temp analysis file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write analysis file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close analysis file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename analysis file: %w", err)
	}
	return nil
}

// Load reads a snapshot back. A missing file is reported via os.IsNotExist;
// a file that exists but does not parse is an error, never silently ignored.
func Load(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Analysis
	if err := toml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", path, err)
	}
	return &a, nil
}
