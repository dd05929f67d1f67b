// Package analysis turns C source text into diagnostics and a concrete
// syntax tree. It never fails: every parser problem, including a panic in the
// parser, is reported as a diagnostic.
package analysis

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/cedit/csyntax"
	"github.com/dhamidi/cedit/ebnf/lex"
	"github.com/dhamidi/cedit/ebnf/parse"
)

var log = commonlog.GetLogger("cedit.analysis")

// Result is the outcome of analysing one source text.
type Result struct {
	Diagnostics []Diagnostic
	Tree        *parse.Node // nil when the parse bailed
}

// OK reports whether the source parsed without any diagnostic.
func (r Result) OK() bool {
	return len(r.Diagnostics) == 0 && r.Tree != nil
}

// listener converts lexer errors into diagnostics in discovery order.
type listener struct {
	diags []Diagnostic
}

func (l *listener) SyntaxError(pos lex.Position, msg string) {
	l.diags = append(l.diags, Diagnostic{
		Line:     pos.Line,
		Column:   pos.Column,
		Message:  msg,
		Severity: SeverityError,
	})
}

// Parse analyses source as a C compilation unit.
func Parse(source string, opts ...parse.Option) (result Result) {
	l := &listener{}
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("parser panic: %v", r)
			l.SyntaxError(lex.Position{Line: 1}, fmt.Sprintf("internal parser error: %v", r))
			result = Result{Diagnostics: l.diags}
		}
	}()

	tree, err := csyntax.Parse(source, l, opts...)
	if err != nil {
		var bail *parse.BailError
		if errors.As(err, &bail) {
			l.SyntaxError(bail.Position(), bail.Message)
		} else {
			l.SyntaxError(lex.Position{Line: 1}, err.Error())
		}
		return Result{Diagnostics: l.diags}
	}
	return Result{Diagnostics: l.diags, Tree: tree}
}
