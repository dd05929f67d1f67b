// Package grammar loads EBNF grammars and assigns rule indices to their
// productions.
//
// Grammars use the notation of golang.org/x/exp/ebnf. Productions whose name
// starts with an upper-case letter are lexical: they name token kinds and are
// matched against the token stream as terminals. All other productions are
// rules. Rules are numbered in declaration order, which gives every rule a
// stable index that parse trees refer to.
package grammar

import (
	"fmt"
	"io"
	"sort"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// Grammar is a verified EBNF grammar with an ordered rule table.
type Grammar struct {
	productions ebnf.Grammar
	start       string
	rules       []string
	index       map[string]int
}

// Load parses and verifies the grammar read from r. start names the
// production every parse begins with.
func Load(filename string, r io.Reader, start string) (*Grammar, error) {
	g, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	if IsToken(start) {
		return nil, fmt.Errorf("start production %s is lexical", start)
	}
	if err := verify(g, start); err != nil {
		return nil, fmt.Errorf("verify grammar: %w", err)
	}

	var prods []*ebnf.Production
	for name, prod := range g {
		if !IsToken(name) {
			prods = append(prods, prod)
		}
	}
	sort.Slice(prods, func(i, j int) bool {
		return prods[i].Name.StringPos.Offset < prods[j].Name.StringPos.Offset
	})

	gr := &Grammar{
		productions: g,
		start:       start,
		rules:       make([]string, len(prods)),
		index:       make(map[string]int, len(prods)),
	}
	for i, prod := range prods {
		gr.rules[i] = prod.Name.String
		gr.index[prod.Name.String] = i
	}
	return gr, nil
}

// IsToken reports whether name refers to a lexical production.
func IsToken(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(ch)
}

// Start returns the name of the start production.
func (g *Grammar) Start() string {
	return g.start
}

// RuleNames returns rule names indexed by rule index.
func (g *Grammar) RuleNames() []string {
	names := make([]string, len(g.rules))
	copy(names, g.rules)
	return names
}

// RuleIndex returns the index of the named rule, or -1.
func (g *Grammar) RuleIndex(name string) int {
	if i, ok := g.index[name]; ok {
		return i
	}
	return -1
}

// RuleName returns the name of the rule with the given index.
func (g *Grammar) RuleName(index int) string {
	if index < 0 || index >= len(g.rules) {
		return ""
	}
	return g.rules[index]
}

// Production returns the production with the given name, or nil.
func (g *Grammar) Production(name string) *ebnf.Production {
	return g.productions[name]
}

// Has reports whether the grammar defines name.
func (g *Grammar) Has(name string) bool {
	_, ok := g.productions[name]
	return ok
}

// ErrorList collects every problem found while verifying a grammar.
type ErrorList []error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// verify checks a grammar under the case convention of this package, which
// is the reverse of ebnf.Verify's: rules may reference tokens, every rule
// referenced must be defined, and every rule must be reachable from start.
// Token productions are descriptive and are not checked.
func verify(g ebnf.Grammar, start string) error {
	var errs ErrorList
	prod, ok := g[start]
	if !ok {
		return ErrorList{fmt.Errorf("no start production %s", start)}
	}

	reached := map[string]bool{start: true}
	queue := []*ebnf.Production{prod}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, ref := range references(p.Expr) {
			name := ref.String
			if IsToken(name) {
				continue
			}
			next, ok := g[name]
			if !ok {
				errs = append(errs, fmt.Errorf("%s: undefined rule %s", ref.Pos(), name))
				continue
			}
			if !reached[name] {
				reached[name] = true
				queue = append(queue, next)
			}
		}
	}

	var unreached []*ebnf.Production
	for name, p := range g {
		if !IsToken(name) && !reached[name] {
			unreached = append(unreached, p)
		}
	}
	sort.Slice(unreached, func(i, j int) bool {
		return unreached[i].Pos().Offset < unreached[j].Pos().Offset
	})
	for _, p := range unreached {
		errs = append(errs, fmt.Errorf("%s: rule %s is unreachable from %s", p.Pos(), p.Name.String, start))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// references returns the names used in expr in source order.
func references(expr ebnf.Expression) []*ebnf.Name {
	var names []*ebnf.Name
	stack := []ebnf.Expression{expr}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch e := e.(type) {
		case *ebnf.Name:
			names = append(names, e)
		case ebnf.Alternative:
			for i := len(e) - 1; i >= 0; i-- {
				stack = append(stack, e[i])
			}
		case ebnf.Sequence:
			for i := len(e) - 1; i >= 0; i-- {
				stack = append(stack, e[i])
			}
		case *ebnf.Group:
			stack = append(stack, e.Body)
		case *ebnf.Option:
			stack = append(stack, e.Body)
		case *ebnf.Repetition:
			stack = append(stack, e.Body)
		}
	}
	return names
}
