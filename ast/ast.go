// Package ast projects concrete parse trees onto a renderer-neutral tree of
// labelled nodes.
package ast

import (
	"github.com/dhamidi/cedit/ebnf/parse"
)

// Node is one labelled node of a display tree. Rule nodes are labelled with
// the rule name, terminals with the token text.
type Node struct {
	Name     string  `json:"name"`
	Children []*Node `json:"children,omitempty"`
}

// Project converts tree into a display tree. ruleNames maps rule indices to
// names. It returns nil when tree is nil.
//
// The walk uses an explicit stack so deeply nested input cannot exhaust the
// goroutine stack.
func Project(tree *parse.Node, ruleNames []string) *Node {
	if tree == nil {
		return nil
	}

	type frame struct {
		src *parse.Node
		dst *Node
	}

	root := &Node{}
	stack := []frame{{src: tree, dst: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		f.dst.Name = label(f.src, ruleNames)
		if len(f.src.Children) == 0 {
			continue
		}
		f.dst.Children = make([]*Node, len(f.src.Children))
		for i, child := range f.src.Children {
			f.dst.Children[i] = &Node{}
			stack = append(stack, frame{src: child, dst: f.dst.Children[i]})
		}
	}
	return root
}

func label(n *parse.Node, ruleNames []string) string {
	if n.IsTerminal() {
		return n.Token.Literal
	}
	if n.RuleIndex >= 0 && n.RuleIndex < len(ruleNames) {
		return ruleNames[n.RuleIndex]
	}
	return "<unknown>"
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	count := 0
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, cur.Children...)
	}
	return count
}

// Find returns the first node, in pre-order, whose name equals name.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Name == name {
			return cur
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return nil
}
