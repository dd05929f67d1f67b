// Package parse interprets EBNF grammars as ordered-choice parsers, producing
// concrete syntax trees.
package parse

import (
	"strings"

	"github.com/dhamidi/cedit/ebnf/lex"
)

// Span represents a range in source code.
type Span struct {
	Start lex.Position
	End   lex.Position
}

// Node represents a node in the concrete syntax tree.
// Leaf nodes have a non-nil Token; interior nodes carry the index of the rule
// that produced them.
type Node struct {
	RuleIndex int        // Index into the grammar's rule table, -1 for terminals
	Children  []*Node    // Child nodes in source order (nil for terminals)
	Token     *lex.Token // The token (non-nil for terminals)
	Span      Span       // Source span covering this node
}

// IsTerminal returns true if this is a leaf node (token).
func (n *Node) IsTerminal() bool {
	return n.Token != nil
}

// Text returns the token literal of a terminal and "" for rule nodes.
func (n *Node) Text() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// AddChild appends a child node and updates the span.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	n.Children = append(n.Children, child)
	if len(n.Children) == 1 {
		n.Span.Start = child.Span.Start
	}
	n.Span.End = child.Span.End
}

// NewTerminal creates a terminal node from a token.
func NewTerminal(tok lex.Token) *Node {
	end := tok.Position
	end.Offset += len(tok.Literal)
	end.Column += len([]rune(tok.Literal))
	return &Node{
		RuleIndex: -1,
		Token:     &tok,
		Span:      Span{Start: tok.Position, End: end},
	}
}

// NewRule creates an empty rule node.
func NewRule(index int) *Node {
	return &Node{RuleIndex: index}
}

// Format renders the tree one node per line, rule nodes by name and
// terminals by literal.
func (n *Node) Format(ruleNames []string) string {
	var b strings.Builder
	n.format(&b, ruleNames, 0)
	return b.String()
}

func (n *Node) format(b *strings.Builder, ruleNames []string, indent int) {
	b.WriteString(strings.Repeat("  ", indent))
	if n.IsTerminal() {
		b.WriteString(n.Token.Literal)
	} else if n.RuleIndex >= 0 && n.RuleIndex < len(ruleNames) {
		b.WriteString(ruleNames[n.RuleIndex])
	} else {
		b.WriteString("?")
	}
	b.WriteString("\n")
	for _, child := range n.Children {
		child.format(b, ruleNames, indent+1)
	}
}
