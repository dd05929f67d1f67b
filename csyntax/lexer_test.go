package csyntax

import (
	"testing"

	"github.com/dhamidi/cedit/ebnf/lex"
)

func kinds(tokens []lex.Token) []string {
	var out []string
	for _, tok := range tokens {
		out = append(out, tok.Kind+":"+tok.Literal)
	}
	return out
}

func TestLexer_Tokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "keywords and identifiers",
			src:  "int main while_x",
			want: []string{"int:int", "Identifier:main", "Identifier:while_x", "EOF:<EOF>"},
		},
		{
			name: "maximal munch",
			src:  "a<<=b->c...++",
			want: []string{"Identifier:a", "<<=:<<=", "Identifier:b", "->:->", "Identifier:c", "...:...", "++:++", "EOF:<EOF>"},
		},
		{
			name: "constants",
			src:  "42 0x1F 3.14e-2 .5f 'a' L'\\n'",
			want: []string{"Constant:42", "Constant:0x1F", "Constant:3.14e-2", "Constant:.5f", "Constant:'a'", "Constant:L'\\n'", "EOF:<EOF>"},
		},
		{
			name: "strings",
			src:  `"a\"b" u8"x" L"y"`,
			want: []string{`StringLiteral:"a\"b"`, `StringLiteral:u8"x"`, `StringLiteral:L"y"`, "EOF:<EOF>"},
		},
		{
			name: "comments and directives",
			src:  "#include <stdio.h>\n#define X \\\n  1\n// line\n/* block\n */ x",
			want: []string{"Identifier:x", "EOF:<EOF>"},
		},
		{
			name: "hash inside line",
			src:  "a # b",
			want: []string{"Identifier:a", "#:#", "Identifier:b", "EOF:<EOF>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs lex.Collector
			got := kinds(Tokenize(tt.src, &errs))
			if len(errs.Errors) != 0 {
				t.Fatalf("unexpected errors: %v", errs.Errors)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	tokens := Tokenize("int x;\n  é = 1;", nil)

	want := []lex.Position{
		{Offset: 0, Line: 1, Column: 0},
		{Offset: 4, Line: 1, Column: 4},
		{Offset: 5, Line: 1, Column: 5},
		{Offset: 9, Line: 2, Column: 2},
		{Offset: 12, Line: 2, Column: 4},
		{Offset: 14, Line: 2, Column: 6},
		{Offset: 15, Line: 2, Column: 7},
		{Offset: 16, Line: 2, Column: 8},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, tok := range tokens {
		if tok.Position != want[i] {
			t.Errorf("token %d (%s) at %+v, want %+v", i, tok.Literal, tok.Position, want[i])
		}
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
		wantPos lex.Position
		wantN   int
	}{
		{
			name:    "stray character",
			src:     "int @x;",
			wantMsg: "token recognition error at: '@'",
			wantPos: lex.Position{Offset: 4, Line: 1, Column: 4},
			wantN:   4,
		},
		{
			name:    "unterminated string",
			src:     "x = \"abc\ny;",
			wantMsg: "token recognition error at: '\"abc'",
			wantPos: lex.Position{Offset: 4, Line: 1, Column: 4},
			wantN:   5,
		},
		{
			name:    "unterminated comment",
			src:     "x /* never closed",
			wantMsg: "unterminated comment",
			wantPos: lex.Position{Offset: 2, Line: 1, Column: 2},
			wantN:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs lex.Collector
			tokens := Tokenize(tt.src, &errs)
			if len(errs.Errors) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs.Errors), errs.Errors)
			}
			if errs.Errors[0].Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs.Errors[0].Message, tt.wantMsg)
			}
			if errs.Errors[0].Position != tt.wantPos {
				t.Errorf("position = %+v, want %+v", errs.Errors[0].Position, tt.wantPos)
			}
			if len(tokens) != tt.wantN {
				t.Errorf("got %d tokens, want %d: %v", len(tokens), tt.wantN, kinds(tokens))
			}
		})
	}
}
