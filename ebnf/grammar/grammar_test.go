package grammar

import (
	"errors"
	"strings"
	"testing"
)

func TestLoad_RuleOrder(t *testing.T) {
	g, err := Load("test", strings.NewReader(`
		program = { statement } .
		statement = Identifier ";" | block .
		block = "{" program "}" .
		Identifier = "a" … "z" .
	`), "program")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []string{"program", "statement", "block"}
	got := g.RuleNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("rules = %v, want %v", got, want)
	}
	for i, name := range want {
		if g.RuleIndex(name) != i {
			t.Errorf("RuleIndex(%q) = %d, want %d", name, g.RuleIndex(name), i)
		}
		if g.RuleName(i) != name {
			t.Errorf("RuleName(%d) = %q, want %q", i, g.RuleName(i), name)
		}
	}
	if g.RuleIndex("Identifier") != -1 {
		t.Error("lexical production must not have a rule index")
	}
	if g.RuleName(99) != "" {
		t.Error("RuleName out of range should be empty")
	}

	got[0] = "mutated"
	if g.RuleName(0) != "program" {
		t.Error("RuleNames must return a copy")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		start string
	}{
		{"syntax", `program = "a" `, "program"},
		{"undefined", `program = missing .`, "program"},
		{"unreachable", "program = \"a\" .\nother = \"b\" .", "program"},
		{"lexical start", `Program = "a" .`, "Program"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load("test", strings.NewReader(tt.src), tt.start); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad_RulesReferenceTokens(t *testing.T) {
	g, err := Load("test", strings.NewReader(`
		unit = { item } EOF .
		item = Identifier "=" Constant ";" .
		Identifier = "a" … "z" .
		EOF = .
	`), "unit")
	if err != nil {
		t.Fatalf("rules referencing token kinds must verify: %v", err)
	}
	if got := strings.Join(g.RuleNames(), ","); got != "unit,item" {
		t.Errorf("rules = %s", got)
	}
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	_, err := Load("test", strings.NewReader(`
		program = first | second .
		first = missing .
		second = "b" .
		orphan = "c" .
		lonely = orphan .
	`), "program")
	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected an ErrorList, got %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(list), list)
	}
	for i, want := range []string{"undefined rule missing", "rule orphan is unreachable", "rule lonely is unreachable"} {
		if !strings.Contains(list[i].Error(), want) {
			t.Errorf("error %d = %q, want it to mention %q", i, list[i], want)
		}
	}
	if !strings.Contains(err.Error(), "(and 2 more errors)") {
		t.Errorf("summary = %q", err)
	}
}

func TestIsToken(t *testing.T) {
	for name, want := range map[string]bool{
		"Identifier": true,
		"EOF":        true,
		"statement":  false,
		"":           false,
	} {
		if got := IsToken(name); got != want {
			t.Errorf("IsToken(%q) = %v, want %v", name, got, want)
		}
	}
}
