package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/cedit/ebnf/lex"
	"github.com/dhamidi/cedit/ebnf/parse"
)

// ASTJSONEncoder writes concrete syntax trees as JSON, including source
// spans. A failed parse is written as a single error node.
type ASTJSONEncoder struct {
	w         io.Writer
	ruleNames []string
}

func NewASTJSONEncoder(w io.Writer, ruleNames []string) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w, ruleNames: ruleNames}
}

func (e *ASTJSONEncoder) Encode(node *parse.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *ASTJSONEncoder) MarshalText(node *parse.Node) ([]byte, error) {
	return json.MarshalIndent(e.nodeToJSON(node), "", "  ")
}

// EncodeBail writes the error that aborted a parse.
func (e *ASTJSONEncoder) EncodeBail(bail *parse.BailError) error {
	pos := toJSONPosition(bail.Position())
	jn := &astJSONNode{
		Kind: "error",
		Span: &astJSONSpan{Start: pos, End: pos},
		Error: &astJSONError{
			Message:  bail.Message,
			Expected: bail.Expected,
			Got:      bail.Token.Literal,
		},
	}
	text, err := json.MarshalIndent(jn, "", "  ")
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

type astJSONNode struct {
	Kind     string         `json:"kind"`
	Span     *astJSONSpan   `json:"span,omitempty"`
	Token    string         `json:"token,omitempty"`
	Error    *astJSONError  `json:"error,omitempty"`
	Children []*astJSONNode `json:"children,omitempty"`
}

type astJSONSpan struct {
	Start astJSONPosition `json:"start"`
	End   astJSONPosition `json:"end"`
}

type astJSONPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type astJSONError struct {
	Message  string   `json:"message"`
	Expected []string `json:"expected,omitempty"`
	Got      string   `json:"got,omitempty"`
}

func toJSONPosition(p lex.Position) astJSONPosition {
	return astJSONPosition{Line: p.Line, Column: p.Column}
}

func (e *ASTJSONEncoder) kind(n *parse.Node) string {
	if n.IsTerminal() {
		return n.Token.Kind
	}
	if n.RuleIndex >= 0 && n.RuleIndex < len(e.ruleNames) {
		return e.ruleNames[n.RuleIndex]
	}
	return "<unknown>"
}

// nodeToJSON converts iteratively; C sources can nest deeply.
func (e *ASTJSONEncoder) nodeToJSON(root *parse.Node) *astJSONNode {
	if root == nil {
		return nil
	}
	type frame struct {
		src *parse.Node
		dst *astJSONNode
	}
	out := &astJSONNode{}
	stack := []frame{{root, out}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := f.src

		f.dst.Kind = e.kind(n)
		if n.Span.Start.Line != 0 || n.Span.End.Line != 0 {
			f.dst.Span = &astJSONSpan{
				Start: toJSONPosition(n.Span.Start),
				End:   toJSONPosition(n.Span.End),
			}
		}
		if n.Token != nil {
			f.dst.Token = n.Token.Literal
		}
		if len(n.Children) > 0 {
			f.dst.Children = make([]*astJSONNode, len(n.Children))
			for i, child := range n.Children {
				f.dst.Children[i] = &astJSONNode{}
				stack = append(stack, frame{child, f.dst.Children[i]})
			}
		}
	}
	return out
}
