package analysis

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Clean(t *testing.T) {
	res := Parse("#include <stdio.h>\n\nint main() {\n    printf(\"Hello, world!\\n\");\n    return 0;\n}\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if res.Tree == nil || !res.OK() {
		t.Fatal("expected a tree")
	}
}

func TestParse_Bail(t *testing.T) {
	res := Parse("int main() {\n  return 0\n}\n")
	if res.Tree != nil {
		t.Error("expected nil tree after bail")
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(res.Diagnostics), res.Diagnostics)
	}
	d := res.Diagnostics[0]
	if d.Line != 3 || d.Column != 0 {
		t.Errorf("position = %d:%d, want 3:0", d.Line, d.Column)
	}
	if !strings.HasPrefix(d.Message, "mismatched input '}'") {
		t.Errorf("message = %q", d.Message)
	}
	if d.Severity != SeverityError {
		t.Errorf("severity = %v, want error", d.Severity)
	}
}

func TestParse_LexerErrorsPrecedeBail(t *testing.T) {
	res := Parse("int x = 1 @;\nint y = ;")
	if res.Tree != nil {
		t.Error("expected nil tree after bail")
	}
	want := []Diagnostic{
		{Line: 1, Column: 10, Message: "token recognition error at: '@'", Severity: SeverityError},
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("got %v", res.Diagnostics)
	}
	if diff := cmp.Diff(want, res.Diagnostics[:1]); diff != "" {
		t.Errorf("lexer diagnostics mismatch (-want +got):\n%s", diff)
	}
	if got := res.Diagnostics[1]; got.Line != 2 || got.Column != 8 {
		t.Errorf("bail at %d:%d, want 2:8", got.Line, got.Column)
	}
}

func TestParse_LexerErrorKeepsTree(t *testing.T) {
	res := Parse("int x;$")
	if res.Tree == nil {
		t.Fatal("a lexer error alone must not discard the tree")
	}
	if len(res.Diagnostics) != 1 || res.OK() {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}
}

func TestMarkers(t *testing.T) {
	diags := []Diagnostic{
		{Line: 3, Column: 0, Message: "a", Severity: SeverityError},
		{Line: 7, Column: 12, Message: "b", Severity: SeverityWarning},
	}
	want := []Marker{
		{StartLine: 3, StartColumn: 1, EndLine: 3, EndColumn: 2, Message: "a", Severity: SeverityError},
		{StartLine: 7, StartColumn: 13, EndLine: 7, EndColumn: 14, Message: "b", Severity: SeverityWarning},
	}
	markers := Markers(diags)
	if diff := cmp.Diff(want, markers); diff != "" {
		t.Fatalf("markers mismatch (-want +got):\n%s", diff)
	}
	for i, m := range markers {
		if diff := cmp.Diff(diags[i], m.Diagnostic()); diff != "" {
			t.Errorf("marker %d does not map back (-want +got):\n%s", i, diff)
		}
	}
	if got := Messages(diags); got[0] != "line 3:0 a" || got[1] != "line 7:12 b" {
		t.Errorf("messages = %q", got)
	}
}

func TestMarker_JSON(t *testing.T) {
	data, err := json.Marshal(Diagnostic{Line: 2, Column: 4, Message: "m", Severity: SeverityError}.Marker())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"startLine":2,"startColumn":5,"endLine":2,"endColumn":6,"message":"m","severity":"error"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var m Marker
	if err := json.Unmarshal([]byte(`{"severity":"fatal"}`), &m); err == nil {
		t.Error("expected error for unknown severity")
	}
}
