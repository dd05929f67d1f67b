package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/cedit/analysis"
	"github.com/dhamidi/cedit/ast"
	"github.com/dhamidi/cedit/csyntax"
	"github.com/dhamidi/cedit/ebnf/parse"
)

func TestTreeText(t *testing.T) {
	tree := &ast.Node{Name: "a", Children: []*ast.Node{
		{Name: "b", Children: []*ast.Node{{Name: "x"}}},
		{Name: "c"},
	}}
	want := "a\n  b\n    x\n  c\n"
	if got := TreeText(tree); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if TreeText(nil) != "" {
		t.Error("nil tree should render empty")
	}
}

func TestTreeJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder("json", &buf)
	if err != nil {
		t.Fatal(err)
	}
	tree := &ast.Node{Name: "root", Children: []*ast.Node{{Name: ";"}}}
	if err := enc.Encode(tree); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded["name"] != "root" {
		t.Errorf("name = %v", decoded["name"])
	}
	children := decoded["children"].([]any)
	leaf := children[0].(map[string]any)
	if _, ok := leaf["children"]; ok {
		t.Error("leaves must not carry a children key")
	}

	if _, err := NewEncoder("yaml", &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestASTJSONEncoder(t *testing.T) {
	tree, err := csyntax.Parse("int x;", nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := NewASTJSONEncoder(&buf, csyntax.RuleNames()).Encode(tree); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`"kind": "compilationUnit"`, `"kind": "Identifier"`, `"token": "x"`, `"column": 4`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestASTJSONEncoder_Bail(t *testing.T) {
	_, err := csyntax.Parse("int x = ;", nil)
	var bail *parse.BailError
	if !errors.As(err, &bail) {
		t.Fatalf("expected bail, got %v", err)
	}
	var buf bytes.Buffer
	if err := NewASTJSONEncoder(&buf, nil).EncodeBail(bail); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Kind  string `json:"kind"`
		Error struct {
			Message string `json:"message"`
			Got     string `json:"got"`
		} `json:"error"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Kind != "error" || decoded.Error.Got != ";" || decoded.Error.Message != bail.Message {
		t.Errorf("unexpected %+v", decoded)
	}
}

func TestDiagnosticPrinter(t *testing.T) {
	src := "int main() {\n\treturn 0\n}\n"
	res := analysis.Parse(src)
	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}

	var buf bytes.Buffer
	if err := NewDiagnosticPrinter(&buf, false).Print("main.c", src, res.Diagnostics); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[0], "main.c:3:1: error: mismatched input '}'") {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "    }" || lines[2] != "    ^" {
		t.Errorf("context = %q / %q", lines[1], lines[2])
	}
}

func TestCaretPadding(t *testing.T) {
	tests := []struct {
		line string
		col  int
		want string
	}{
		{"abc", 2, "  "},
		{"\tx", 1, "\t"},
		{"日本x", 2, "    "},
		{"short", 10, "     "},
	}
	for _, tt := range tests {
		if got := caretPadding(tt.line, tt.col); got != tt.want {
			t.Errorf("caretPadding(%q, %d) = %q, want %q", tt.line, tt.col, got, tt.want)
		}
	}
}
