// Package lex defines the token stream consumed by grammar-driven parsers.
package lex

import "fmt"

// Well-known token kinds. Keywords and punctuators use their literal text as
// their kind, so a grammar token such as "while" matches a token of kind "while".
const (
	KindEOF           = "EOF"
	KindIdentifier    = "Identifier"
	KindConstant      = "Constant"
	KindStringLiteral = "StringLiteral"
)

// EOFLiteral is the text carried by the end-of-input token.
const EOFLiteral = "<EOF>"

// Position represents a location in source code.
// Line is 1-based; Column is the 0-based rune offset within the line.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token with its position.
type Token struct {
	Kind     string
	Literal  string
	Position Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Position, t.Kind, t.Literal)
}

// IsEOF reports whether t terminates the stream.
func (t Token) IsEOF() bool {
	return t.Kind == KindEOF
}

// ErrorListener receives syntax errors in the order they are discovered.
type ErrorListener interface {
	SyntaxError(pos Position, msg string)
}

// SyntaxError is one error reported to a Collector.
type SyntaxError struct {
	Position Position
	Message  string
}

// Collector is an ErrorListener that keeps every reported error.
type Collector struct {
	Errors []SyntaxError
}

func (c *Collector) SyntaxError(pos Position, msg string) {
	c.Errors = append(c.Errors, SyntaxError{Position: pos, Message: msg})
}
