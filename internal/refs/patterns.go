package refs

import (
	"regexp"
)

// Binding and access patterns for heuristic field-usage scanning. There is no
// Python parser here: each pattern works line by line, and the variable name
// is captured generically then post-filtered against the file's binding map
// instead of rebuilding a regex per variable.

const (
	ctorAlt = `(?:get_doc|new_doc|get_cached_doc)`
	// A doctype argument: either a string literal or a dict with a
	// 'doctype' key. The two capture groups are mutually exclusive.
	doctypeArg = `(?:["'](?P<dt>[^"']+)["']|\{\s*["']doctype["']\s*:\s*["'](?P<dtkey>[^"']+)["'])`
)

var (
	// Pattern: var = frappe.get_doc("Sales Invoice", ...)
	//          var = frappe.new_doc({'doctype': 'Sales Invoice'})
	bindPattern = regexp.MustCompile(
		`(?P<var>[A-Za-z_]\w*)\s*=\s*frappe\.` + ctorAlt + `\s*\(\s*` + doctypeArg + `[^)]*\)`)

	// Pattern: frappe.get_doc("X", ...).append("items", ...) with no
	// intermediate variable.
	inlinePattern = regexp.MustCompile(
		`frappe\.` + ctorAlt + `\s*\(\s*` + doctypeArg + `[^)]*\)` +
			`\.(?:append|get|set|get_value)\s*\(\s*["'](?P<field>[^"']+)["']`)

	// Pattern: var.customer
	attrPattern = regexp.MustCompile(`\b(?P<var>[A-Za-z_]\w*)\.(?P<field>[A-Za-z_]\w*)\b`)

	// Pattern: var["customer"]
	subscriptPattern = regexp.MustCompile(`\b(?P<var>[A-Za-z_]\w*)\s*\[\s*["'](?P<field>[^"']+)["']\s*\]`)

	// Pattern: var.get("customer")
	getPattern = regexp.MustCompile(`\b(?P<var>[A-Za-z_]\w*)\.get\s*\(\s*["'](?P<field>[^"']+)["']`)

	// Pattern: var.set("customer", ...)
	setPattern = regexp.MustCompile(`\b(?P<var>[A-Za-z_]\w*)\.set\s*\(\s*["'](?P<field>[^"']+)["']`)

	// Pattern: var.append("items", {...})
	appendPattern = regexp.MustCompile(`\b(?P<var>[A-Za-z_]\w*)\.append\s*\(\s*["'](?P<field>[^"']+)["']`)

	// Pattern: var.get_value("field")
	getValuePattern = regexp.MustCompile(`\b(?P<var>[A-Za-z_]\w*)\.get_value\s*\(\s*["'](?P<field>[^"']+)["']`)
)

// accessPatterns pairs each access-kind with its matcher, in the order the
// kinds are collected per line.
var accessPatterns = []struct {
	kind string
	rx   *regexp.Regexp
}{
	{KindAttribute, attrPattern},
	{KindSubscript, subscriptPattern},
	{KindGet, getPattern},
	{KindSet, setPattern},
	{KindAppend, appendPattern},
	{KindGetValue, getValuePattern},
}

// varFieldMatch is one (variable, field) hit on a line.
type varFieldMatch struct {
	variable string
	field    string
}

// matchBindings returns every binding on the line, left to right. The
// string-literal doctype group wins over the dict form by construction; the
// two groups cannot both match.
func matchBindings(line string) [][2]string {
	var out [][2]string
	for _, m := range bindPattern.FindAllStringSubmatch(line, -1) {
		dt := m[bindDtIdx]
		if dt == "" {
			dt = m[bindDtKeyIdx]
		}
		if dt == "" {
			continue
		}
		out = append(out, [2]string{m[bindVarIdx], dt})
	}
	return out
}

// matchInline returns every fused constructor-plus-access call on the line as
// (doctype, field) pairs.
func matchInline(line string) [][2]string {
	var out [][2]string
	for _, m := range inlinePattern.FindAllStringSubmatch(line, -1) {
		dt := m[inlineDtIdx]
		if dt == "" {
			dt = m[inlineDtKeyIdx]
		}
		if dt == "" || m[inlineFieldIdx] == "" {
			continue
		}
		out = append(out, [2]string{dt, m[inlineFieldIdx]})
	}
	return out
}

// matchAccesses finds every (var, field) hit of rx on the line. The scan
// restarts one byte after each match start so that a bound variable nested in
// a longer chain is still seen (e.g. both "self.doc" and "doc.title" in
// "self.doc.title"). Re-slicing makes \b accept the slice start as a word
// boundary, so each var is re-checked against the intact line; "subinv.total"
// must never count as an access through "inv".
func matchAccesses(rx *regexp.Regexp, line string) []varFieldMatch {
	var out []varFieldMatch
	pos := 0
	for pos < len(line) {
		loc := rx.FindStringSubmatchIndex(line[pos:])
		if loc == nil {
			break
		}
		groups := rx.SubexpNames()
		var m varFieldMatch
		varStart := -1
		for i, name := range groups {
			if loc[2*i] < 0 {
				continue
			}
			val := line[pos+loc[2*i] : pos+loc[2*i+1]]
			switch name {
			case "var":
				m.variable = val
				varStart = pos + loc[2*i]
			case "field":
				m.field = val
			}
		}
		if m.variable != "" && m.field != "" && boundaryBefore(line, varStart) {
			out = append(out, m)
		}
		pos += loc[0] + 1
	}
	return out
}

// boundaryBefore reports whether position i in line is preceded by a non-word
// byte or the line start.
func boundaryBefore(line string, i int) bool {
	if i <= 0 {
		return true
	}
	c := line[i-1]
	return !(c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z')
}

// Submatch indices, resolved once at init so matching stays allocation-light.
var (
	bindVarIdx, bindDtIdx, bindDtKeyIdx       int
	inlineDtIdx, inlineDtKeyIdx, inlineFieldIdx int
)

func init() {
	for i, name := range bindPattern.SubexpNames() {
		switch name {
		case "var":
			bindVarIdx = i
		case "dt":
			bindDtIdx = i
		case "dtkey":
			bindDtKeyIdx = i
		}
	}
	for i, name := range inlinePattern.SubexpNames() {
		switch name {
		case "dt":
			inlineDtIdx = i
		case "dtkey":
			inlineDtKeyIdx = i
		case "field":
			inlineFieldIdx = i
		}
	}
}
