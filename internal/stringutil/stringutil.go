package stringutil

import (
	"strings"
	"unicode"
)

// ToSnakeCase lowers a display name into a snake_case identifier safe for
// Python module and directory names. "Sales Invoice" becomes "sales_invoice".
func ToSnakeCase(name string) string {
	name = strings.TrimSpace(name)

	var b strings.Builder
	b.Grow(len(name))
	prevUnderscore := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore = false
		} else if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}

	out := strings.TrimSuffix(b.String(), "_")
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	if out == "" {
		return "default_name"
	}
	return out
}

// CapitalizeWords turns a directory name like "sales_invoice" into a humanized
// label "Sales Invoice". Used when a DocType metadata file carries no name key.
func CapitalizeWords(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// IsValidIdentifier reports whether s is a bare Python identifier.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) && r < 128 {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}
