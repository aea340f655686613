package refs

import (
	"strings"

	"github.com/anvie/frappe-mcp/internal/stringutil"
)

// Auto-generated type blocks inside DocType controllers look like:
//
//	class Invoice(Document):
//	    # begin: auto-generated types
//	    amount: DF.Currency
//	    customer: DF.Link | None
//	    # end: auto-generated types
//
// The block is bounded by indentation, not grammar. That is fragile against
// multi-line statements, but it only has to frame this one narrow region.

const (
	typeHintBeginMarker = "# begin: auto-generated types"
	typeHintEndMarker   = "# end: auto-generated types"
	documentBaseMarker  = "Document"
	typeHintNamespace   = "DF."
	tabWidth            = 8
)

type classBlock struct {
	name      string
	indent    int
	bodyStart int // index of first body line
	bodyEnd   int // exclusive
}

// scanTypeHints extracts typed field declarations from qualifying class
// bodies and records them under the file's resolved doctype.
func scanTypeHints(idx *UsageIndex, detected map[string]bool, file, doctype string, lines []string) {
	for _, class := range findClassBlocks(lines) {
		begin, end := -1, -1
		for k := class.bodyStart; k < class.bodyEnd && k < len(lines); k++ {
			t := strings.TrimLeft(lines[k], " \t")
			if strings.HasPrefix(t, typeHintBeginMarker) {
				begin = k + 1
			} else if strings.HasPrefix(t, typeHintEndMarker) {
				end = k
				break
			}
		}
		// No marker pair, no extraction. The rest of the body is never
		// scanned as a fallback.
		if begin < 0 || end < 0 {
			continue
		}

		for ln := begin; ln < end; ln++ {
			field, token, ok := parseTypeHintLine(lines[ln])
			if !ok {
				continue
			}
			idx.add(doctype, field, Occurrence{
				File: file,
				Line: ln + 1,
				Var:  class.name,
				Kind: KindTypeHint + ":" + token,
			})
			detected[doctype] = true
		}
	}
}

// findClassBlocks locates class headers and bounds each body at the first
// following non-blank line indented at or left of the header. Only classes
// with an empty base list or a Document-derived base qualify.
func findClassBlocks(lines []string) []classBlock {
	var blocks []classBlock

	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, "class ") {
			i++
			continue
		}

		name, bases, ok := parseClassHeader(trimmed)
		if !ok || (bases != "" && !strings.Contains(bases, documentBaseMarker)) {
			i++
			continue
		}

		indent := indentWidth(line)
		j := i + 1
		for j < len(lines) {
			l := lines[j]
			if strings.TrimSpace(l) == "" {
				j++
				continue
			}
			if indentWidth(l) <= indent {
				break
			}
			j++
		}
		blocks = append(blocks, classBlock{name: name, indent: indent, bodyStart: i + 1, bodyEnd: j})
		i = j
	}
	return blocks
}

// parseClassHeader splits "class Name(bases...):" into name and base list.
func parseClassHeader(trimmed string) (name, bases string, ok bool) {
	after := strings.TrimPrefix(trimmed, "class ")
	colon := strings.Index(after, ":")
	if colon < 0 {
		return "", "", false
	}
	header := after[:colon]
	if paren := strings.Index(header, "("); paren >= 0 {
		name = strings.TrimSpace(header[:paren])
		if rparen := strings.LastIndex(header, ")"); rparen > paren {
			bases = strings.TrimSpace(header[paren+1 : rparen])
		}
	} else {
		name = strings.TrimSpace(header)
	}
	if name == "" {
		return "", "", false
	}
	return name, bases, true
}

// parseTypeHintLine matches `identifier : DF.Token`, tolerating a trailing
// union/optional suffix and an inline comment. The annotation token is
// returned without its namespace.
func parseTypeHintLine(line string) (field, token string, ok bool) {
	core := line
	if hash := strings.Index(core, "#"); hash >= 0 {
		core = core[:hash]
	}
	core = strings.TrimSpace(core)

	colon := strings.Index(core, ":")
	if colon < 0 {
		return "", "", false
	}
	lhs := strings.TrimSpace(core[:colon])
	rhs := strings.TrimSpace(core[colon+1:])

	if !stringutil.IsValidIdentifier(lhs) {
		return "", "", false
	}
	if !strings.HasPrefix(rhs, typeHintNamespace) {
		return "", "", false
	}
	rhs = rhs[len(typeHintNamespace):]

	var b strings.Builder
	for _, r := range rhs {
		if r == '|' || r == ' ' || r == '\t' {
			break
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "", "", false
	}
	return lhs, b.String(), true
}

// indentWidth measures leading whitespace with tabs expanded to the next
// multiple of tabWidth.
func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += tabWidth - w%tabWidth
		default:
			return w
		}
	}
	return w
}
