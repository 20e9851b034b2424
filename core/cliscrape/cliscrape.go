// Package cliscrape extracts structured fields from free-text CLI output.
// Parsers are pure: they take the lines a command produced and either return
// the requested fields or a typed error, never a partial default.
package cliscrape

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

// errorToken marks a device-side failure anywhere in a line.
const errorToken = "Error"

// SplitLines splits command output into lines, dropping carriage returns.
func SplitLines(output string) []string {
	if output == "" {
		return nil
	}
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

// CheckDeviceError returns a *entities.DeviceError for the first line that
// contains the case-sensitive Error token.
func CheckDeviceError(lines []string) error {
	for _, line := range lines {
		if strings.Contains(line, errorToken) {
			return &entities.DeviceError{Line: strings.TrimSpace(line)}
		}
	}
	return nil
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isSeparatorLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	for _, ch := range trimmed {
		if ch != '-' && ch != '=' && ch != '+' && ch != '*' {
			return false
		}
	}
	return true
}

type tableState int

const (
	seekingHeader tableState = iota
	inTable
	done
)

// HeaderTable parses the rows that follow a header line. Lines are skipped
// until one contains Header; every following line is a row until the first
// blank line ends the table.
type HeaderTable struct {
	Header    string
	MinFields int
}

// Parse returns the whitespace-split fields of each row. A missing header
// yields no rows. A row shorter than MinFields is an error.
func (t HeaderTable) Parse(lines []string) ([][]string, error) {
	if err := CheckDeviceError(lines); err != nil {
		return nil, err
	}
	var rows [][]string
	state := seekingHeader
	for _, line := range lines {
		switch state {
		case seekingHeader:
			if strings.Contains(line, t.Header) {
				state = inTable
			}
		case inTable:
			if isBlank(line) {
				state = done
				break
			}
			if isSeparatorLine(line) {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) < t.MinFields {
				return nil, fmt.Errorf("row %q has %d fields, want %d: %w",
					strings.TrimSpace(line), len(fields), t.MinFields,
					&entities.FieldNotFoundError{Field: fmt.Sprintf("column %d", len(fields))})
			}
			rows = append(rows, fields)
		}
		if state == done {
			break
		}
	}
	return rows, nil
}

// Pattern extracts one labeled field with a regular expression.
type Pattern struct {
	Label string
	Expr  *regexp.Regexp
	// Group is the capture group holding the value, 1 when zero.
	Group int
}

// NewPattern compiles expr into a Pattern capturing group 1.
func NewPattern(label, expr string) Pattern {
	return Pattern{Label: label, Expr: regexp.MustCompile(expr), Group: 1}
}

func (p Pattern) group() int {
	if p.Group == 0 {
		return 1
	}
	return p.Group
}

// Find returns the first match in the lines and whether one was found.
func (p Pattern) Find(lines []string) (string, bool) {
	for _, line := range lines {
		m := p.Expr.FindStringSubmatch(line)
		if len(m) > p.group() {
			return strings.TrimSpace(m[p.group()]), true
		}
	}
	return "", false
}

// FindAll returns every match in line order.
func (p Pattern) FindAll(lines []string) []string {
	var out []string
	for _, line := range lines {
		m := p.Expr.FindStringSubmatch(line)
		if len(m) > p.group() {
			out = append(out, strings.TrimSpace(m[p.group()]))
		}
	}
	return out
}

// Extract is Find for required fields.
func (p Pattern) Extract(lines []string) (string, error) {
	if err := CheckDeviceError(lines); err != nil {
		return "", err
	}
	v, ok := p.Find(lines)
	if !ok {
		return "", &entities.FieldNotFoundError{Field: p.Label}
	}
	return v, nil
}

// ExtractAll applies every pattern and returns the values keyed by label.
func ExtractAll(lines []string, patterns ...Pattern) (map[string]string, error) {
	if err := CheckDeviceError(lines); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(patterns))
	for _, p := range patterns {
		v, ok := p.Find(lines)
		if !ok {
			return nil, &entities.FieldNotFoundError{Field: p.Label}
		}
		out[p.Label] = v
	}
	return out, nil
}
