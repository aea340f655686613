package analysis

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anvie/frappe-mcp/internal/catalog"
	"github.com/anvie/frappe-mcp/internal/config"
	"github.com/anvie/frappe-mcp/internal/refs"
	"github.com/anvie/frappe-mcp/internal/stringutil"
)

// DefaultUsageLimit caps occurrences returned per field lookup.
const DefaultUsageLimit = 10

// Scaffolder creates new DocType skeletons on disk. Implementations are
// expected to call Store.RegisterDocType with the result.
type Scaffolder interface {
	Scaffold(ctx context.Context, dt catalog.DocType) error
}

// CommandProxy runs app-management commands (bench, database shells) on
// behalf of callers.
type CommandProxy interface {
	Run(ctx context.Context, args ...string) (output string, err error)
}

// FieldUsage is the answer to one field lookup. An unknown doctype or field
// is not an error; Found is false and Message says why, with a near-miss
// doctype suggestion when one exists.
type FieldUsage struct {
	Doctype     string
	Field       string
	Found       bool
	Total       int
	Occurrences []refs.Occurrence
	Message     string
	Suggestion  string
}

// Store holds the current snapshot behind a read/write lock. Lookups take
// the read lock; only RegisterDocType and snapshot swaps take the write lock.
type Store struct {
	cfg *config.Config

	mu sync.RWMutex
	a  *Analysis
}

// NewStore returns a store with an empty snapshot. Call Load or EnsureFresh
// before querying.
func NewStore(cfg *config.Config) *Store {
	return &Store{cfg: cfg, a: &Analysis{}}
}

// Load reads the persisted snapshot. A missing file leaves the store empty
// and is not an error; an unparseable file is.
func (s *Store) Load() error {
	a, err := Load(s.cfg.AnalysisFile)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.WithField("path", s.cfg.AnalysisFile).Warn("no analysis snapshot, starting empty")
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.a = a
	s.mu.Unlock()
	return nil
}

// Refresh rebuilds the snapshot from the app tree, persists it and swaps it
// in.
func (s *Store) Refresh() error {
	a, err := Run(s.cfg)
	if err != nil {
		return err
	}
	if err := a.Save(s.cfg.AnalysisFile); err != nil {
		return err
	}
	s.mu.Lock()
	s.a = a
	s.mu.Unlock()
	return nil
}

// EnsureFresh rebuilds only when the snapshot is missing or older than its
// sources. The check is coarse: any newer source invalidates the whole
// snapshot, there is no per-file re-indexing.
func (s *Store) EnsureFresh() error {
	if !s.Stale() {
		return nil
	}
	return s.Refresh()
}

// Stale reports whether any cataloged source file is newer than the
// persisted snapshot. A missing snapshot is stale; a missing source file is
// ignored, the next full rebuild drops it anyway.
func (s *Store) Stale() bool {
	info, err := os.Stat(s.cfg.AnalysisFile)
	if err != nil {
		return true
	}
	snapTime := info.ModTime()

	appDir := filepath.Join(s.cfg.AppRoot(), filepath.Base(s.cfg.AppRoot()))
	if newerThan(filepath.Join(appDir, "modules.txt"), snapTime) {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, dt := range s.a.Doctypes {
		if newerThan(s.sourcePath(appDir, dt.BackendFile), snapTime) {
			return true
		}
		if dt.MetaFile != "" && newerThan(s.sourcePath(appDir, dt.MetaFile), snapTime) {
			return true
		}
	}
	return false
}

// sourcePath maps a snapshot-relative file path back to disk. Snapshot paths
// carry the configured app prefix; stripping it leaves the path under the
// app directory.
func (s *Store) sourcePath(appDir, rel string) string {
	if prefix := filepath.ToSlash(s.cfg.AppRelativePath); prefix != "" {
		rel = strings.TrimPrefix(rel, prefix+"/")
	}
	return filepath.Join(appDir, filepath.FromSlash(rel))
}

func newerThan(path string, t time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.ModTime().After(t)
}

// ListDoctypes returns cataloged doctypes, optionally filtered to one module
// (case-insensitive).
func (s *Store) ListDoctypes(module string) []catalog.DocType {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if module == "" {
		out := make([]catalog.DocType, len(s.a.Doctypes))
		copy(out, s.a.Doctypes)
		return out
	}
	var out []catalog.DocType
	for _, dt := range s.a.Doctypes {
		if strings.EqualFold(dt.Module, module) {
			out = append(out, dt)
		}
	}
	return out
}

// Modules returns the cataloged modules.
func (s *Store) Modules() []catalog.Module {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Module, len(s.a.Modules))
	copy(out, s.a.Modules)
	return out
}

// GetDoctype finds one doctype by display name, case-insensitively. A miss in
// the snapshot falls back to the filesystem: a conventional
// .../doctype/<snake_name>/ directory under the app tree still resolves even
// when it was never cataloged. When both miss, the returned suggestion names
// the closest cataloged doctype, or is empty.
func (s *Store) GetDoctype(name string) (dt catalog.DocType, suggestion string, ok bool) {
	s.mu.RLock()
	cat := catalog.Catalog{Doctypes: s.a.Doctypes}
	dt, ok = cat.ByName(name)
	if !ok {
		suggestion = cat.Suggest(name)
	}
	s.mu.RUnlock()

	if ok {
		return dt, "", true
	}
	if dt, found := s.findByConvention(name); found {
		return dt, "", true
	}
	return catalog.DocType{}, suggestion, false
}

// findByConvention scans the app tree for doctype files named after the
// snake_case form of name, the directory layout the framework itself
// generates.
func (s *Store) findByConvention(name string) (catalog.DocType, bool) {
	snake := stringutil.ToSnakeCase(name)
	appDir := filepath.Join(s.cfg.AppRoot(), filepath.Base(s.cfg.AppRoot()))

	dt := catalog.DocType{}
	found := false
	filepath.WalkDir(appDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		slashed := filepath.ToSlash(path)
		if !strings.Contains(slashed, "/doctype/"+snake+"/") {
			return nil
		}
		switch d.Name() {
		case snake + ".py":
			dt.BackendFile = s.snapshotPath(appDir, path)
		case snake + ".js":
			dt.FrontendFile = s.snapshotPath(appDir, path)
		case snake + ".json":
			dt.MetaFile = s.snapshotPath(appDir, path)
			if meta, rerr := os.ReadFile(path); rerr == nil {
				dt.Name = catalog.CanonicalName(meta, snake)
			}
		default:
			return nil
		}
		found = true
		if dt.Module == "" {
			dt.Module = moduleFromPath(slashed)
		}
		return nil
	})
	if !found {
		return catalog.DocType{}, false
	}
	if dt.Name == "" {
		dt.Name = stringutil.CapitalizeWords(snake)
	}
	return dt, true
}

// snapshotPath is the inverse of sourcePath: a file under the app directory
// rendered with the configured app prefix, the way the catalog records it.
func (s *Store) snapshotPath(appDir, full string) string {
	rel, err := filepath.Rel(appDir, full)
	if err != nil {
		return filepath.ToSlash(full)
	}
	if prefix := filepath.ToSlash(s.cfg.AppRelativePath); prefix != "" {
		return prefix + "/" + filepath.ToSlash(rel)
	}
	return filepath.ToSlash(rel)
}

// moduleFromPath humanizes the directory segment enclosing the rightmost
// doctype/ component.
func moduleFromPath(slashed string) string {
	parts := strings.Split(slashed, "/")
	for i := len(parts) - 1; i > 0; i-- {
		if parts[i] == "doctype" {
			return stringutil.CapitalizeWords(parts[i-1])
		}
	}
	return ""
}

// DoctypeMeta returns the raw schema metadata for one doctype. Unknown
// doctypes and doctypes without a schema file yield nil with no error; a
// schema file that exists but cannot be read is an error.
func (s *Store) DoctypeMeta(name string) ([]byte, error) {
	dt, _, ok := s.GetDoctype(name)
	if !ok || dt.MetaFile == "" {
		return nil, nil
	}
	appDir := filepath.Join(s.cfg.AppRoot(), filepath.Base(s.cfg.AppRoot()))
	raw, err := os.ReadFile(s.sourcePath(appDir, dt.MetaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

// LookupFieldUsage answers where a field of a doctype is referenced. Unknown
// doctypes and fields come back as Found=false with a message, never an
// error. Occurrences beyond limit (DefaultUsageLimit when <= 0) are dropped
// but still counted in Total.
func (s *Store) LookupFieldUsage(doctype, field string, limit int) FieldUsage {
	if limit <= 0 {
		limit = DefaultUsageLimit
	}
	res := FieldUsage{Doctype: doctype, Field: field}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.a.SymbolRefs == nil {
		res.Message = "no symbol reference data available, run analysis first"
		return res
	}
	usage, ok := s.a.SymbolRefs.Doctypes[doctype]
	if !ok {
		res.Message = fmt.Sprintf("DocType %q not found in analyzed data", doctype)
		res.Suggestion = (&catalog.Catalog{Doctypes: s.a.Doctypes}).Suggest(doctype)
		return res
	}
	occs, ok := usage.Fields[field]
	if !ok {
		res.Message = fmt.Sprintf("field %q not found for DocType %q", field, doctype)
		return res
	}

	res.Found = true
	res.Total = len(occs)
	if len(occs) > limit {
		occs = occs[:limit]
	}
	res.Occurrences = make([]refs.Occurrence, len(occs))
	copy(res.Occurrences, occs)
	return res
}

// RegisterDocType appends a newly scaffolded doctype to the snapshot and
// persists it. Names are unique case-insensitively; existing entries are
// never modified.
func (s *Store) RegisterDocType(dt catalog.DocType) error {
	if dt.Name == "" {
		return fmt.Errorf("registering doctype: empty name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.a.Doctypes {
		if strings.EqualFold(existing.Name, dt.Name) {
			return fmt.Errorf("doctype %q already registered", existing.Name)
		}
	}
	s.a.Doctypes = append(s.a.Doctypes, dt)
	return s.a.Save(s.cfg.AnalysisFile)
}
