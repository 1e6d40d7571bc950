package chart

import (
	"bufio"
	"regexp"
	"strings"

	"pgcledger/internal/core/pgc"
)

// ImportRow is one parsed line of a chart import file.
type ImportRow struct {
	Line        int
	Code        string
	Description string
	Kind        Kind
}

// ImportFailure records a rejected line.
type ImportFailure struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// ImportReport summarizes an import run.
type ImportReport struct {
	Processed int             `json:"processed"`
	Created   int             `json:"created"`
	Updated   int             `json:"updated"`
	Failures  []ImportFailure `json:"failures,omitempty"`
}

var (
	multiSpace = regexp.MustCompile(`\s{2,}|\t`)
	codeToken  = regexp.MustCompile(`^[0-9][0-9.]*$`)
)

// ParseImportLine parses "CODE DESCRIPTION TYPE". The trailing type is a
// letter R/I/M/A or a full word; without one the line is split on tabs or
// runs of two or more spaces and the kind defaults to MOVEMENT.
func ParseImportLine(line string) (ImportRow, bool, string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ImportRow{}, false, ""
	}

	var code, desc, kind string
	if parts := multiSpace.Split(line, -1); len(parts) >= 2 && codeToken.MatchString(strings.TrimSpace(parts[0])) {
		code = parts[0]
		if len(parts) >= 3 {
			if _, ok := LookupKind(parts[len(parts)-1]); ok {
				kind = parts[len(parts)-1]
				parts = parts[:len(parts)-1]
			}
		}
		desc = strings.Join(parts[1:], " ")
	} else {
		fields := strings.Fields(line)
		code = fields[0]
		rest := fields[1:]
		if len(rest) >= 2 {
			if _, ok := LookupKind(rest[len(rest)-1]); ok {
				kind = rest[len(rest)-1]
				rest = rest[:len(rest)-1]
			}
		}
		desc = strings.Join(rest, " ")
	}

	code = strings.TrimSpace(code)
	desc = strings.TrimSpace(desc)
	if !codeToken.MatchString(code) {
		return ImportRow{}, false, "invalid account code"
	}
	if desc == "" {
		return ImportRow{}, false, "missing description"
	}

	return ImportRow{
		Code:        pgc.Normalize(code),
		Description: desc,
		Kind:        ParseKind(kind),
	}, true, ""
}

// ParseImport parses a whole import file. Blank and comment lines are skipped.
func ParseImport(text string) ([]ImportRow, []ImportFailure) {
	var (
		rows     []ImportRow
		failures []ImportFailure
	)
	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		row, ok, reason := ParseImportLine(raw)
		if !ok {
			if reason != "" {
				failures = append(failures, ImportFailure{Line: lineNo, Raw: raw, Reason: reason})
			}
			continue
		}
		row.Line = lineNo
		rows = append(rows, row)
	}
	return rows, failures
}
