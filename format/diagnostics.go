package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/dhamidi/cedit/analysis"
)

// DiagnosticPrinter writes diagnostics as
//
//	file.c:3:5: error: message
//	    source line
//	    ^
//
// Columns are printed 1-based.
type DiagnosticPrinter struct {
	w        io.Writer
	errColor *color.Color
	wrnColor *color.Color
	locColor *color.Color
	hintCol  *color.Color
}

// NewDiagnosticPrinter returns a printer writing to w. useColor forces ANSI
// colors on or off regardless of the terminal.
func NewDiagnosticPrinter(w io.Writer, useColor bool) *DiagnosticPrinter {
	p := &DiagnosticPrinter{
		w:        w,
		errColor: color.New(color.FgRed, color.Bold),
		wrnColor: color.New(color.FgYellow, color.Bold),
		locColor: color.New(color.Bold),
		hintCol:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.errColor, p.wrnColor, p.locColor, p.hintCol} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Print writes every diagnostic of one file.
func (p *DiagnosticPrinter) Print(filename, source string, diags []analysis.Diagnostic) error {
	lines := strings.Split(source, "\n")
	for _, d := range diags {
		if err := p.print(filename, lines, d); err != nil {
			return err
		}
	}
	return nil
}

func (p *DiagnosticPrinter) print(filename string, lines []string, d analysis.Diagnostic) error {
	sev := p.errColor
	if d.Severity == analysis.SeverityWarning {
		sev = p.wrnColor
	}
	loc := p.locColor.Sprintf("%s:%d:%d:", filename, d.Line, d.Column+1)
	if _, err := fmt.Fprintf(p.w, "%s %s %s\n", loc, sev.Sprintf("%s:", d.Severity), d.Message); err != nil {
		return err
	}
	if d.Line < 1 || d.Line > len(lines) {
		return nil
	}
	line := strings.TrimRight(lines[d.Line-1], "\r")
	_, err := fmt.Fprintf(p.w, "    %s\n    %s%s\n", line, caretPadding(line, d.Column), p.hintCol.Sprint("^"))
	return err
}

// caretPadding returns whitespace as wide as the first col runes of line.
// Tabs are kept so the caret lines up under any tab width.
func caretPadding(line string, col int) string {
	var sb strings.Builder
	i := 0
	for _, r := range line {
		if i == col {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
		i++
	}
	return sb.String()
}
