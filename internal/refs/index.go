package refs

// Access kinds, as persisted in the snapshot. Type-hint occurrences carry the
// annotation token as a suffix, e.g. "type-hint:Currency".
const (
	KindAttribute = "attribute"
	KindSubscript = "subscript"
	KindGet       = "get"
	KindSet       = "set"
	KindAppend    = "append"
	KindGetValue  = "get-value"
	KindInline    = "inline"
	KindTypeHint  = "type-hint"

	// InlineVar marks occurrences produced by binding-less inline
	// expressions.
	InlineVar = "<inline>"

	// SelfVar is the conventional variable assumed to hold the enclosing
	// doctype in backend controller files.
	SelfVar = "doc"
)

// Occurrence is one concrete reference to a doctype field. Immutable once
// created; occurrences are appended, never merged or removed.
type Occurrence struct {
	File string `toml:"file"`
	Line int    `toml:"line"`
	Var  string `toml:"var"`
	Kind string `toml:"kind"`
}

// DoctypeUsage maps field name to its occurrences in discovery order.
type DoctypeUsage struct {
	Fields map[string][]Occurrence `toml:"fields"`
}

// Stats counts what one scan pass attempted and found.
type Stats struct {
	FilesScanned     int `toml:"files_scanned"`
	PyFiles          int `toml:"py_files"`
	DoctypesDetected int `toml:"doctypes_detected"`
	TotalFieldHits   int `toml:"total_field_hits"`
}

// UsageIndex aggregates every occurrence found in one sequential tree walk.
// Map keys serialize sorted, so rebuilding an unchanged tree produces a
// byte-identical snapshot; occurrence slices keep discovery order.
type UsageIndex struct {
	Doctypes map[string]*DoctypeUsage `toml:"doctypes"`

	// Unknown holds accesses whose owning doctype could not be inferred,
	// keyed file -> field -> occurrences. Populated only under the
	// "retain" policy.
	Unknown map[string]map[string][]Occurrence `toml:"unknown"`

	Stats Stats `toml:"stats"`
}

// NewUsageIndex returns an empty index ready for one scan pass.
func NewUsageIndex() *UsageIndex {
	return &UsageIndex{
		Doctypes: make(map[string]*DoctypeUsage),
		Unknown:  make(map[string]map[string][]Occurrence),
	}
}

func (idx *UsageIndex) add(doctype, field string, occ Occurrence) {
	usage, ok := idx.Doctypes[doctype]
	if !ok {
		usage = &DoctypeUsage{Fields: make(map[string][]Occurrence)}
		idx.Doctypes[doctype] = usage
	}
	usage.Fields[field] = append(usage.Fields[field], occ)
	idx.Stats.TotalFieldHits++
}

func (idx *UsageIndex) addUnknown(file, field string, occ Occurrence) {
	byField, ok := idx.Unknown[file]
	if !ok {
		byField = make(map[string][]Occurrence)
		idx.Unknown[file] = byField
	}
	byField[field] = append(byField[field], occ)
	idx.Stats.TotalFieldHits++
}

// FieldOccurrences returns the occurrence list for (doctype, field), or nil.
func (idx *UsageIndex) FieldOccurrences(doctype, field string) []Occurrence {
	usage, ok := idx.Doctypes[doctype]
	if !ok {
		return nil
	}
	return usage.Fields[field]
}
