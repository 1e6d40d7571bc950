// Package pgc holds the Angolan general chart of accounts (Plano Geral de
// Contabilidade) conventions: dotted account codes, the eight top-level
// classes and the debit/credit nature of every class.
package pgc

import (
	"strings"
)

// Separator splits hierarchical code segments.
const Separator = "."

// Normalize canonicalizes a raw account code.
//
// Codes that already contain a separator are kept as they are. Codes with
// three or more characters and no separator get a separator after the first
// two characters and then one between every remaining character:
//
//	"311"     -> "31.1"
//	"3110001" -> "31.1.0.0.0.1"
//
// Normalize(Normalize(c)) == Normalize(c) for every input.
func Normalize(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" || strings.Contains(code, Separator) || len(code) < 3 {
		return code
	}

	var b strings.Builder
	b.Grow(len(code) * 2)
	b.WriteString(code[:2])
	for _, r := range code[2:] {
		b.WriteString(Separator)
		b.WriteRune(r)
	}
	return b.String()
}

// ParentCode returns the code with its last segment removed, or "" for a
// root-level code.
func ParentCode(code string) string {
	idx := strings.LastIndex(code, Separator)
	if idx <= 0 {
		return ""
	}
	return code[:idx]
}

// ClassDigit returns the first character of a code, which identifies its class.
func ClassDigit(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	return code[:1]
}

// Segments splits a code into its dotted parts.
func Segments(code string) []string {
	if code == "" {
		return nil
	}
	return strings.Split(code, Separator)
}

// Ancestors lists every proper ancestor code from the closest to the root.
//
//	Ancestors("31.1.2") -> ["31.1", "31"]
func Ancestors(code string) []string {
	var out []string
	for p := ParentCode(code); p != ""; p = ParentCode(p) {
		out = append(out, p)
	}
	return out
}

// IsDescendantOf reports whether code lies strictly below ancestor.
func IsDescendantOf(code, ancestor string) bool {
	return ancestor != "" && strings.HasPrefix(code, ancestor+Separator)
}
