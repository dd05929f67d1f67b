package parse

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/cedit/ebnf/grammar"
	"github.com/dhamidi/cedit/ebnf/lex"
)

// DefaultMaxDepth bounds how deeply rules may nest before a parse bails.
const DefaultMaxDepth = 4000

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// BailError reports the structural failure that aborted a parse. The parser
// does not attempt recovery: the first failure ends the parse.
type BailError struct {
	Token    lex.Token // offending token
	Expected []string  // terminals that would have allowed progress
	Message  string
}

func (e *BailError) Error() string {
	return e.Message
}

// Position returns the position of the offending token.
func (e *BailError) Position() lex.Position {
	return e.Token.Position
}

type memoKey struct {
	rule int
	pos  int
}

type memoEntry struct {
	node *Node
	end  int
	ok   bool
}

// Parser interprets a grammar over a token stream.
//
// Alternatives are tried in order and the first that succeeds wins; options and
// repetitions are greedy. Rule results are memoised per token position, so a
// parse runs in time linear in the number of (rule, position) pairs.
type Parser struct {
	grammar  *grammar.Grammar
	tokens   []lex.Token
	maxDepth int

	depth    int
	memo     map[memoKey]memoEntry
	furthest int
	expected map[string]bool
	bail     *BailError
}

// NewParser creates a parser for tokens. A trailing EOF token is appended
// when the stream does not already end with one.
func NewParser(g *grammar.Grammar, tokens []lex.Token, opts ...Option) *Parser {
	if len(tokens) == 0 || !tokens[len(tokens)-1].IsEOF() {
		pos := lex.Position{Line: 1}
		if len(tokens) > 0 {
			pos = tokens[len(tokens)-1].Position
		}
		tokens = append(tokens[:len(tokens):len(tokens)], lex.Token{
			Kind:     lex.KindEOF,
			Literal:  lex.EOFLiteral,
			Position: pos,
		})
	}
	p := &Parser{
		grammar:  g,
		tokens:   tokens,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses starting from the given production, or from the grammar's
// start production when start is empty. The whole token stream must be
// consumed. On failure the returned error is a *BailError.
func (p *Parser) Parse(start string) (*Node, error) {
	if start == "" {
		start = p.grammar.Start()
	}
	if grammar.IsToken(start) || p.grammar.Production(start) == nil {
		return nil, fmt.Errorf("production %q not found in grammar", start)
	}

	p.depth = 0
	p.memo = make(map[memoKey]memoEntry)
	p.furthest = 0
	p.expected = make(map[string]bool)
	p.bail = nil

	node, end, ok := p.rule(start, 0)
	if p.bail != nil {
		return nil, p.bail
	}
	if ok && end < len(p.tokens)-1 {
		p.expect(end, lex.EOFLiteral)
		ok = false
	}
	if !ok {
		return nil, p.newBail(p.furthest, "")
	}
	return node, nil
}

func (p *Parser) rule(name string, pos int) (*Node, int, bool) {
	if p.bail != nil {
		return nil, pos, false
	}
	index := p.grammar.RuleIndex(name)
	key := memoKey{rule: index, pos: pos}
	if e, ok := p.memo[key]; ok {
		return e.node, e.end, e.ok
	}
	if p.depth >= p.maxDepth {
		p.bail = p.newBail(pos, "maximum nesting depth exceeded")
		return nil, pos, false
	}

	p.depth++
	children, end, ok := p.match(p.grammar.Production(name).Expr, pos)
	p.depth--
	if p.bail != nil {
		return nil, pos, false
	}

	var node *Node
	if ok {
		node = NewRule(index)
		for _, child := range children {
			node.AddChild(child)
		}
		if len(children) == 0 {
			at := p.tokens[min(pos, len(p.tokens)-1)].Position
			node.Span = Span{Start: at, End: at}
		}
	}
	p.memo[key] = memoEntry{node: node, end: end, ok: ok}
	return node, end, ok
}

func (p *Parser) match(expr ebnf.Expression, pos int) ([]*Node, int, bool) {
	if p.bail != nil {
		return nil, pos, false
	}
	switch e := expr.(type) {
	case nil:
		return nil, pos, true

	case *ebnf.Token:
		return p.terminal(e.String, "'"+e.String+"'", pos)

	case *ebnf.Name:
		if grammar.IsToken(e.String) {
			display := e.String
			if display == lex.KindEOF {
				display = lex.EOFLiteral
			}
			return p.terminal(e.String, display, pos)
		}
		node, end, ok := p.rule(e.String, pos)
		if !ok {
			return nil, pos, false
		}
		return []*Node{node}, end, true

	case ebnf.Sequence:
		var children []*Node
		cur := pos
		for _, item := range e {
			c, end, ok := p.match(item, cur)
			if !ok {
				return nil, pos, false
			}
			children = append(children, c...)
			cur = end
		}
		return children, cur, true

	case ebnf.Alternative:
		for _, alt := range e {
			if c, end, ok := p.match(alt, pos); ok {
				return c, end, true
			}
			if p.bail != nil {
				break
			}
		}
		return nil, pos, false

	case *ebnf.Group:
		return p.match(e.Body, pos)

	case *ebnf.Option:
		if c, end, ok := p.match(e.Body, pos); ok {
			return c, end, true
		}
		return nil, pos, p.bail == nil

	case *ebnf.Repetition:
		var children []*Node
		cur := pos
		for {
			c, end, ok := p.match(e.Body, cur)
			if !ok || end == cur {
				break
			}
			children = append(children, c...)
			cur = end
		}
		return children, cur, p.bail == nil
	}

	// Ranges only appear in lexical productions, which are matched by the
	// lexer, never here.
	return nil, pos, false
}

func (p *Parser) terminal(kind, display string, pos int) ([]*Node, int, bool) {
	if pos >= len(p.tokens) {
		p.expect(len(p.tokens)-1, display)
		return nil, pos, false
	}
	tok := p.tokens[pos]
	if tok.Kind == kind {
		return []*Node{NewTerminal(tok)}, pos + 1, true
	}
	p.expect(pos, display)
	return nil, pos, false
}

// expect records that display would have matched at pos. Only the furthest
// position reached is kept for error reporting.
func (p *Parser) expect(pos int, display string) {
	switch {
	case pos > p.furthest:
		p.furthest = pos
		p.expected = map[string]bool{display: true}
	case pos == p.furthest:
		p.expected[display] = true
	}
}

func (p *Parser) newBail(pos int, reason string) *BailError {
	tok := p.tokens[min(pos, len(p.tokens)-1)]
	input := tok.Literal
	if tok.IsEOF() {
		input = lex.EOFLiteral
	}

	var expected []string
	if reason == "" {
		for exp := range p.expected {
			expected = append(expected, exp)
		}
		sort.Strings(expected)
	}

	var msg string
	switch {
	case reason != "":
		msg = fmt.Sprintf("%s at input '%s'", reason, input)
	case len(expected) == 0:
		msg = fmt.Sprintf("no viable alternative at input '%s'", input)
	case len(expected) == 1:
		msg = fmt.Sprintf("mismatched input '%s' expecting %s", input, expected[0])
	default:
		msg = fmt.Sprintf("mismatched input '%s' expecting {%s}", input, strings.Join(expected, ", "))
	}
	return &BailError{Token: tok, Expected: expected, Message: msg}
}
