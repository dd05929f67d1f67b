package csyntax

import (
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/cedit/ebnf/lex"
	"github.com/dhamidi/cedit/ebnf/parse"
)

const helloWorld = `#include <stdio.h>

int main() {
    printf("Hello, world!\n");
    return 0;
}
`

const kitchenSink = `#include <stdlib.h>

enum Color { RED, GREEN = 2, BLUE, };

struct Point { int x, y; };

static const char *names[] = { "red", "green", "blue" };

typedef int (*compare_fn)(const void *, const void *);

unsigned long long counter;

int sum(int n, ...) {
    int total = 0;
    for (int i = 0; i < n; i++) {
        total += i * 2;
    }
    for (;;) break;
    return total;
}

int main(void) {
    struct Point p = { .x = 1, .y = 2 };
    struct Point q = (struct Point){ 3, 4 };
    int arr[3] = { [0] = 1, [2] = 3 };
    double d = (double)p.x / 3.0;
    char c = 'a';
    size_t len = sizeof(arr) / sizeof arr[0];
    switch (c) {
    case 'a':
        d += 1;
        break;
    default:
        break;
    }
    do { len--; } while (len > 0 && d != 0.0);
    if (p.x == 1) goto done; else d = -d;
done:
    return q.y ? 0 : 1;
}
`

const linkedList = `#include <stdio.h>
#include <stdlib.h>
#include "list.h"

typedef struct Node {
    int data;
    struct Node* next;
} Node;

Node* createNode(int data) {
    Node* newNode = malloc(sizeof(Node));
    newNode->data = data;
    newNode->next = NULL;
    return newNode;
}

void printList(Node* head) {
    Node* current = head;
    while (current != NULL) {
        printf("%d -> ", current->data);
        current = current->next;
    }
    printf("NULL\n");
}
`

func TestParse_Accepts(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"hello world", helloWorld},
		{"kitchen sink", kitchenSink},
		{"linked list", linkedList},
		{"header", "#ifndef UTILS_H\n#define UTILS_H\n\nvoid greet(const char* name);\n\n#endif\n"},
		{"stray semicolons", ";;int x;;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs lex.Collector
			tree, err := Parse(tt.src, &errs)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(errs.Errors) != 0 {
				t.Fatalf("lexer errors: %v", errs.Errors)
			}
			if tree == nil {
				t.Fatal("nil tree")
			}
		})
	}
}

func TestParse_HelloWorldShape(t *testing.T) {
	tree, err := Parse(helloWorld, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	names := RuleNames()
	if got := names[tree.RuleIndex]; got != StartRule {
		t.Fatalf("root = %q, want %q", got, StartRule)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("root has %d children, want 2:\n%s", len(tree.Children), tree.Format(names))
	}
	if got := names[tree.Children[0].RuleIndex]; got != "functionDefinition" {
		t.Errorf("first child = %q, want functionDefinition", got)
	}
	if !tree.Children[1].IsTerminal() || !tree.Children[1].Token.IsEOF() {
		t.Errorf("last child should be EOF")
	}
}

func TestParse_Bails(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantPrefix string
		wantLine   int
		wantCol    int
	}{
		{
			name:       "missing semicolon",
			src:        "int main() {\n    printf(\"hi\")\n    return 0;\n}\n",
			wantPrefix: "mismatched input 'return' expecting {",
			wantLine:   3,
			wantCol:    4,
		},
		{
			name:       "missing initializer",
			src:        "int x = ;",
			wantPrefix: "mismatched input ';'",
			wantLine:   1,
			wantCol:    8,
		},
		{
			name:       "unclosed body",
			src:        "int main() {\n  return 0;\n",
			wantPrefix: "mismatched input '<EOF>'",
			wantLine:   3,
			wantCol:    0,
		},
		{
			name:       "keyword as name",
			src:        "int while;",
			wantPrefix: "mismatched input 'while'",
			wantLine:   1,
			wantCol:    4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse(tt.src, nil)
			if tree != nil {
				t.Error("expected nil tree")
			}
			var bail *parse.BailError
			if !errors.As(err, &bail) {
				t.Fatalf("expected *parse.BailError, got %v", err)
			}
			if !strings.HasPrefix(bail.Message, tt.wantPrefix) {
				t.Errorf("message = %q, want prefix %q", bail.Message, tt.wantPrefix)
			}
			if pos := bail.Position(); pos.Line != tt.wantLine || pos.Column != tt.wantCol {
				t.Errorf("position = %d:%d, want %d:%d", pos.Line, pos.Column, tt.wantLine, tt.wantCol)
			}
		})
	}
}

func TestParse_DeepNesting(t *testing.T) {
	nested := func(depth int) string {
		return "int x = " + strings.Repeat("(", depth) + "1" + strings.Repeat(")", depth) + ";"
	}

	if _, err := Parse(nested(100), nil); err != nil {
		t.Fatalf("depth 100: %v", err)
	}

	_, err := Parse(nested(5000), nil)
	var bail *parse.BailError
	if !errors.As(err, &bail) {
		t.Fatalf("expected bail, got %v", err)
	}
	if !strings.HasPrefix(bail.Message, "maximum nesting depth exceeded") {
		t.Errorf("message = %q", bail.Message)
	}
}

func TestGrammar_Rules(t *testing.T) {
	g, err := Grammar()
	if err != nil {
		t.Fatalf("grammar: %v", err)
	}
	names := g.RuleNames()
	if names[0] != StartRule {
		t.Errorf("rule 0 = %q, want %q", names[0], StartRule)
	}
	for _, want := range []string{"functionDefinition", "declaration", "compoundStatement", "primaryExpression"} {
		if g.RuleIndex(want) < 0 {
			t.Errorf("missing rule %q", want)
		}
	}
	if !strings.Contains(GrammarSource(), "compilationUnit =") {
		t.Error("GrammarSource should return the grammar text")
	}
}
