package analysis

import (
	"fmt"
)

// Severity ranks a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	switch s {
	case SeverityError, SeverityWarning:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("invalid severity %d", uint8(s))
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		return fmt.Errorf("invalid severity %q", text)
	}
	return nil
}

// Diagnostic is one syntax problem found in a document.
// Line is 1-based and Column is the 0-based rune offset within the line.
type Diagnostic struct {
	Line     int      `json:"line" msgpack:"line"`
	Column   int      `json:"column" msgpack:"column"`
	Message  string   `json:"message" msgpack:"message"`
	Severity Severity `json:"severity" msgpack:"severity"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d:%d %s", d.Line, d.Column, d.Message)
}

// Marker is the editor-facing annotation for a diagnostic. Columns are
// 1-based and the marker spans a single character.
type Marker struct {
	StartLine   int      `json:"startLine" msgpack:"startLine"`
	StartColumn int      `json:"startColumn" msgpack:"startColumn"`
	EndLine     int      `json:"endLine" msgpack:"endLine"`
	EndColumn   int      `json:"endColumn" msgpack:"endColumn"`
	Message     string   `json:"message" msgpack:"message"`
	Severity    Severity `json:"severity" msgpack:"severity"`
}

// Marker derives the editor marker for d.
func (d Diagnostic) Marker() Marker {
	return Marker{
		StartLine:   d.Line,
		StartColumn: d.Column + 1,
		EndLine:     d.Line,
		EndColumn:   d.Column + 2,
		Message:     d.Message,
		Severity:    d.Severity,
	}
}

// Diagnostic recovers the diagnostic m was derived from.
func (m Marker) Diagnostic() Diagnostic {
	return Diagnostic{
		Line:     m.StartLine,
		Column:   m.StartColumn - 1,
		Message:  m.Message,
		Severity: m.Severity,
	}
}

// Markers derives one marker per diagnostic, in order.
func Markers(diags []Diagnostic) []Marker {
	markers := make([]Marker, len(diags))
	for i, d := range diags {
		markers[i] = d.Marker()
	}
	return markers
}

// Messages renders each diagnostic as "line L:C message".
func Messages(diags []Diagnostic) []string {
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.String()
	}
	return msgs
}
