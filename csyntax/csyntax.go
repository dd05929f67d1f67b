// Package csyntax is the C front end of the editor: an embedded C grammar,
// a lexer that produces tokens for it, and a fail-fast parser entry point.
//
// The parser does not recover from errors. The first structural failure
// aborts the parse and is returned as a *parse.BailError. Lexical problems
// such as stray characters are reported to an lex.ErrorListener and do not
// stop the parse.
package csyntax

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/dhamidi/cedit/ebnf/grammar"
	"github.com/dhamidi/cedit/ebnf/lex"
	"github.com/dhamidi/cedit/ebnf/parse"
)

// StartRule is the production every parse of a source file begins with.
const StartRule = "compilationUnit"

//go:embed c.ebnf
var grammarSource string

var (
	grammarOnce sync.Once
	cGrammar    *grammar.Grammar
	grammarErr  error
)

// Grammar returns the C grammar. It is loaded and verified once.
func Grammar() (*grammar.Grammar, error) {
	grammarOnce.Do(func() {
		cGrammar, grammarErr = grammar.Load("c.ebnf", strings.NewReader(grammarSource), StartRule)
	})
	return cGrammar, grammarErr
}

// GrammarSource returns the EBNF text of the C grammar.
func GrammarSource() string {
	return grammarSource
}

// RuleNames returns the C grammar's rule names indexed by rule index.
// It returns nil if the grammar failed to load.
func RuleNames() []string {
	g, err := Grammar()
	if err != nil {
		return nil
	}
	return g.RuleNames()
}

// Parse tokenizes and parses src as a C compilation unit.
func Parse(src string, listener lex.ErrorListener, opts ...parse.Option) (*parse.Node, error) {
	g, err := Grammar()
	if err != nil {
		return nil, err
	}
	tokens := Tokenize(src, listener)
	return parse.NewParser(g, tokens, opts...).Parse(StartRule)
}
