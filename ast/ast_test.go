package ast

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/cedit/csyntax"
	"github.com/dhamidi/cedit/ebnf/lex"
	"github.com/dhamidi/cedit/ebnf/parse"
)

func leaf(name string) *Node {
	return &Node{Name: name}
}

func TestProject_Nil(t *testing.T) {
	if got := Project(nil, nil); got != nil {
		t.Fatalf("Project(nil) = %+v, want nil", got)
	}
}

func TestProject_Golden(t *testing.T) {
	tree, err := csyntax.Parse("int x;", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := &Node{Name: "compilationUnit", Children: []*Node{
		{Name: "declaration", Children: []*Node{
			{Name: "declarationSpecifiers", Children: []*Node{
				{Name: "typeSpecifier", Children: []*Node{
					{Name: "builtinTypeSpecifier", Children: []*Node{leaf("int")}},
				}},
			}},
			{Name: "initDeclaratorList", Children: []*Node{
				{Name: "initDeclarator", Children: []*Node{
					{Name: "declarator", Children: []*Node{
						{Name: "directDeclarator", Children: []*Node{leaf("x")}},
					}},
				}},
			}},
			leaf(";"),
		}},
		leaf("<EOF>"),
	}}

	got := Project(tree, csyntax.RuleNames())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("projection mismatch (-want +got):\n%s", diff)
	}

	again := Project(tree, csyntax.RuleNames())
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("projection is not deterministic:\n%s", diff)
	}
}

func TestProject_HelloWorld(t *testing.T) {
	tree, err := csyntax.Parse("int main() {\n    printf(\"Hello, world!\\n\");\n    return 0;\n}\n", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	root := Project(tree, csyntax.RuleNames())
	if root.Name != "compilationUnit" {
		t.Fatalf("root = %q", root.Name)
	}
	if root.Children[0].Name != "functionDefinition" {
		t.Errorf("first child = %q, want functionDefinition", root.Children[0].Name)
	}
	call := root.Find("argumentExpressionList")
	if call == nil || call.Find(`"Hello, world!\n"`) == nil {
		t.Error("string literal argument not found")
	}
	if root.Find("jumpStatement") == nil {
		t.Error("return statement not found")
	}
}

func TestProject_DeepTree(t *testing.T) {
	const depth = 200000
	g := parse.NewRule(0)
	cur := g
	for i := 0; i < depth; i++ {
		next := parse.NewRule(0)
		cur.AddChild(next)
		cur = next
	}
	cur.AddChild(parse.NewTerminal(lex.Token{Kind: "Identifier", Literal: "x"}))

	root := Project(g, []string{"r"})
	if got := root.Count(); got != depth+2 {
		t.Fatalf("count = %d, want %d", got, depth+2)
	}
	if root.Find("x") == nil {
		t.Error("leaf not found")
	}
}

func TestProject_UnknownRule(t *testing.T) {
	n := parse.NewRule(7)
	got := Project(n, []string{"only"})
	if !strings.HasPrefix(got.Name, "<") {
		t.Errorf("name = %q", got.Name)
	}
}
