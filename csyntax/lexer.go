package csyntax

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/cedit/ebnf/lex"
)

var keywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true,
	"_Alignas": true, "_Alignof": true, "_Atomic": true, "_Bool": true,
	"_Complex": true, "_Generic": true, "_Imaginary": true, "_Noreturn": true,
	"_Static_assert": true, "_Thread_local": true,
}

// Punctuators grouped by length so the longest match wins.
var punctuators = [...]map[string]bool{
	3: {"...": true, "<<=": true, ">>=": true},
	2: {
		"->": true, "++": true, "--": true, "<<": true, ">>": true,
		"<=": true, ">=": true, "==": true, "!=": true, "&&": true,
		"||": true, "*=": true, "/=": true, "%=": true, "+=": true,
		"-=": true, "&=": true, "^=": true, "|=": true, "##": true,
	},
	1: {
		"[": true, "]": true, "(": true, ")": true, "{": true, "}": true,
		".": true, "&": true, "*": true, "+": true, "-": true, "~": true,
		"!": true, "/": true, "%": true, "<": true, ">": true, "^": true,
		"|": true, "?": true, ":": true, ";": true, "=": true, ",": true,
		"#": true,
	},
}

// IsKeyword reports whether word is a reserved C keyword.
func IsKeyword(word string) bool {
	return keywords[word]
}

// Lexer splits C source into tokens. Comments, whitespace and preprocessor
// directives are skipped. Characters that cannot start a token are reported
// to the listener and dropped.
type Lexer struct {
	src       string
	offset    int
	line      int
	column    int
	lineStart bool
	listener  lex.ErrorListener
}

// NewLexer creates a lexer over src. listener may be nil.
func NewLexer(src string, listener lex.ErrorListener) *Lexer {
	return &Lexer{
		src:       src,
		line:      1,
		lineStart: true,
		listener:  listener,
	}
}

// Tokenize returns every token in src followed by an EOF token.
func Tokenize(src string, listener lex.ErrorListener) []lex.Token {
	l := NewLexer(src, listener)
	var tokens []lex.Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.IsEOF() {
			return tokens
		}
	}
}

// Next returns the next token. At end of input it keeps returning EOF.
func (l *Lexer) Next() lex.Token {
	for {
		l.skipSpaceAndComments()
		start := l.pos()
		if l.offset >= len(l.src) {
			return lex.Token{Kind: lex.KindEOF, Literal: lex.EOFLiteral, Position: start}
		}

		ch := l.src[l.offset]
		switch {
		case ch == '#' && l.lineStart:
			l.skipDirective()
			continue
		case ch == '"':
			if tok, ok := l.scanQuoted(start, '"'); ok {
				return tok
			}
			continue
		case ch == '\'':
			if tok, ok := l.scanQuoted(start, '\''); ok {
				return tok
			}
			continue
		case isDigit(ch) || ch == '.' && isDigit(l.peek(1)):
			return l.scanNumber(start)
		}

		r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
		if isIdentStart(r) {
			if tok, ok := l.scanIdentifier(start); ok {
				return tok
			}
			continue
		}

		for n := 3; n >= 1; n-- {
			if l.offset+n > len(l.src) {
				continue
			}
			if text := l.src[l.offset : l.offset+n]; punctuators[n][text] {
				l.advanceN(n)
				return l.token(text, text, start)
			}
		}

		l.advance()
		l.report(start, fmt.Sprintf("token recognition error at: '%s'", l.src[start.Offset:l.offset]))
	}
}

func (l *Lexer) pos() lex.Position {
	return lex.Position{Offset: l.offset, Line: l.line, Column: l.column}
}

func (l *Lexer) token(kind, literal string, start lex.Position) lex.Token {
	l.lineStart = false
	return lex.Token{Kind: kind, Literal: literal, Position: start}
}

func (l *Lexer) report(at lex.Position, msg string) {
	if l.listener != nil {
		l.listener.SyntaxError(at, msg)
	}
}

func (l *Lexer) peek(n int) byte {
	if l.offset+n < len(l.src) {
		return l.src[l.offset+n]
	}
	return 0
}

// advance consumes one rune. Columns count runes, not bytes.
func (l *Lexer) advance() {
	r, size := utf8.DecodeRuneInString(l.src[l.offset:])
	l.offset += size
	if r == '\n' {
		l.line++
		l.column = 0
		l.lineStart = true
	} else {
		l.column++
	}
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && l.offset < len(l.src); i++ {
		l.advance()
	}
}

func (l *Lexer) skipSpaceAndComments() {
	for l.offset < len(l.src) {
		switch ch := l.src[l.offset]; {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f':
			l.advance()
		case ch == '\\' && l.peek(1) == '\n':
			l.advanceN(2)
		case ch == '/' && l.peek(1) == '/':
			for l.offset < len(l.src) && l.src[l.offset] != '\n' {
				l.advance()
			}
		case ch == '/' && l.peek(1) == '*':
			start := l.pos()
			l.advanceN(2)
			for {
				if l.offset >= len(l.src) {
					l.report(start, "unterminated comment")
					return
				}
				if l.src[l.offset] == '*' && l.peek(1) == '/' {
					l.advanceN(2)
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

// skipDirective skips a preprocessor line including backslash continuations.
func (l *Lexer) skipDirective() {
	for l.offset < len(l.src) {
		ch := l.src[l.offset]
		if ch == '\n' {
			return
		}
		if ch == '\\' && l.peek(1) == '\n' {
			l.advanceN(2)
			continue
		}
		if ch == '\\' && l.peek(1) == '\r' && l.peek(2) == '\n' {
			l.advanceN(3)
			continue
		}
		l.advance()
	}
}

func (l *Lexer) scanIdentifier(start lex.Position) (lex.Token, bool) {
	for l.offset < len(l.src) {
		r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
		if !isIdentPart(r) {
			break
		}
		l.advance()
	}
	word := l.src[start.Offset:l.offset]

	switch l.peek(0) {
	case '"':
		if word == "L" || word == "u" || word == "U" || word == "u8" {
			return l.scanQuoted(start, '"')
		}
	case '\'':
		if word == "L" || word == "u" || word == "U" {
			return l.scanQuoted(start, '\'')
		}
	}

	if keywords[word] {
		return l.token(word, word, start), true
	}
	return l.token(lex.KindIdentifier, word, start), true
}

// scanQuoted scans a string literal or character constant whose opening
// quote is at the current offset. Unterminated literals are reported and
// dropped.
func (l *Lexer) scanQuoted(start lex.Position, quote byte) (lex.Token, bool) {
	l.advance()
	for {
		if l.offset >= len(l.src) || l.src[l.offset] == '\n' {
			l.report(start, fmt.Sprintf("token recognition error at: '%s'", l.src[start.Offset:l.offset]))
			return lex.Token{}, false
		}
		ch := l.src[l.offset]
		l.advance()
		if ch == '\\' && l.offset < len(l.src) {
			l.advance()
			continue
		}
		if ch == quote {
			break
		}
	}

	kind := lex.KindStringLiteral
	if quote == '\'' {
		kind = lex.KindConstant
	}
	return l.token(kind, l.src[start.Offset:l.offset], start), true
}

// scanNumber scans a preprocessing number: digits, letters, underscores,
// periods and signed exponents.
func (l *Lexer) scanNumber(start lex.Position) lex.Token {
	for l.offset < len(l.src) {
		ch := l.src[l.offset]
		switch {
		case isDigit(ch) || isASCIILetter(ch) || ch == '_' || ch == '.':
			l.advance()
		case (ch == '+' || ch == '-') && l.offset > start.Offset && isExponent(l.src[l.offset-1]):
			l.advance()
		default:
			return l.token(lex.KindConstant, l.src[start.Offset:l.offset], start)
		}
	}
	return l.token(lex.KindConstant, l.src[start.Offset:l.offset], start)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isASCIILetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isExponent(ch byte) bool {
	return ch == 'e' || ch == 'E' || ch == 'p' || ch == 'P'
}

func isIdentStart(r rune) bool {
	return r == '_' || r < utf8.RuneSelf && isASCIILetter(byte(r)) || r >= utf8.RuneSelf && unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || r >= '0' && r <= '9' || r >= utf8.RuneSelf && unicode.IsDigit(r)
}
