// Package links builds the outgoing reference graph between doctypes from
// their schema metadata: Link fields, child tables and Select fields whose
// options name another doctype.
package links

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// DefaultDepth is how many levels of referenced doctypes are followed when
// the caller does not say otherwise.
const DefaultDepth = 2

// Kind classifies how one doctype references another.
type Kind string

const (
	KindDirect Kind = "Direct" // Link field
	KindTable  Kind = "Table"  // child table field
	KindSelect Kind = "Select" // Select field whose options name a doctype
)

// Link is one outgoing reference from a schema field to another doctype.
type Link struct {
	Target    string
	Fieldname string
	Label     string
	Fieldtype string
	Required  bool
	Kind      Kind
}

// MetaReader resolves a doctype name to its raw schema metadata. Unknown
// doctypes and doctypes without a schema file yield nil with no error.
type MetaReader interface {
	DoctypeMeta(name string) ([]byte, error)
}

// Graph holds the outgoing links of every doctype reached from Root within
// Depth levels. Reached doctypes without outgoing links still get a node.
type Graph struct {
	Root  string
	Depth int
	Nodes map[string][]Link
}

// Analyze walks the reference graph breadth-first from root, reading each
// reached doctype's schema through meta. Unparseable metadata fails the whole
// analysis; a doctype that simply has no metadata contributes an empty node.
func Analyze(meta MetaReader, root string, depth int) (*Graph, error) {
	if depth <= 0 {
		depth = DefaultDepth
	}
	g := &Graph{Root: root, Depth: depth, Nodes: make(map[string][]Link)}

	type item struct {
		name  string
		level int
	}
	visited := make(map[string]bool)
	queue := []item{{root, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		key := strings.ToLower(cur.name)
		if visited[key] || cur.level > depth {
			continue
		}
		visited[key] = true

		out, err := doctypeLinks(meta, cur.name)
		if err != nil {
			return nil, err
		}
		g.Nodes[cur.name] = out

		if cur.level < depth {
			for _, l := range out {
				if !visited[strings.ToLower(l.Target)] {
					queue = append(queue, item{l.Target, cur.level + 1})
				}
			}
		}
	}
	return g, nil
}

// Counts totals the graph's links per kind.
func (g *Graph) Counts() (direct, table, sel int) {
	for _, out := range g.Nodes {
		for _, l := range out {
			switch l.Kind {
			case KindDirect:
				direct++
			case KindTable:
				table++
			case KindSelect:
				sel++
			}
		}
	}
	return
}

// DoctypeNames returns the graph's node names, sorted.
func (g *Graph) DoctypeNames() []string {
	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func doctypeLinks(meta MetaReader, name string) ([]Link, error) {
	raw, err := meta.DoctypeMeta(name)
	if err != nil {
		return nil, fmt.Errorf("metadata for %q: %w", name, err)
	}
	if raw == nil {
		return nil, nil
	}

	// Fields parse loosely: real schema files carry booleans as 0/1 and omit
	// keys freely, so each field is inspected as a generic map.
	var schema struct {
		Fields []map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("parse metadata for %q: %w", name, err)
	}

	var out []Link
	for _, field := range schema.Fields {
		if l, ok := extractLink(field); ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// extractLink decides whether one schema field references another doctype.
func extractLink(field map[string]any) (Link, bool) {
	fieldname, _ := field["fieldname"].(string)
	fieldtype, _ := field["fieldtype"].(string)
	if fieldname == "" || fieldtype == "" {
		return Link{}, false
	}
	label, _ := field["label"].(string)
	if label == "" {
		label = fieldname
	}
	required := truthy(field["reqd"])
	options, _ := field["options"].(string)

	l := Link{Fieldname: fieldname, Label: label, Fieldtype: fieldtype, Required: required}

	switch fieldtype {
	case "Link":
		if options == "" {
			return Link{}, false
		}
		l.Target, l.Kind = options, KindDirect
	case "Table":
		if options == "" {
			return Link{}, false
		}
		l.Target, l.Kind = options, KindTable
	case "Select":
		// Multi-line options enumerate literal choices, not a doctype. A
		// single-line value counts only when it looks like a display name.
		if options == "" || strings.Contains(options, "\n") {
			return Link{}, false
		}
		if !strings.ContainsFunc(options, unicode.IsUpper) && !strings.Contains(options, " ") {
			return Link{}, false
		}
		l.Target, l.Kind = options, KindSelect
	default:
		return Link{}, false
	}
	return l, true
}

// truthy reads the reqd flag from schema JSON, where it appears as a bool or
// as 0/1.
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	}
	return false
}
