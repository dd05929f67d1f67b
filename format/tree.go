package format

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/dhamidi/cedit/ast"
)

// TreeJSONEncoder writes display trees in the {name, children} form the
// tree viewer consumes.
type TreeJSONEncoder struct {
	w io.Writer
}

func NewTreeJSONEncoder(w io.Writer) *TreeJSONEncoder {
	return &TreeJSONEncoder{w: w}
}

func (e *TreeJSONEncoder) Encode(tree *ast.Node) error {
	text, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

// TreeTextEncoder writes display trees one node per line, indented by depth.
type TreeTextEncoder struct {
	w io.Writer
}

func NewTreeTextEncoder(w io.Writer) *TreeTextEncoder {
	return &TreeTextEncoder{w: w}
}

func (e *TreeTextEncoder) Encode(tree *ast.Node) error {
	_, err := io.WriteString(e.w, TreeText(tree))
	return err
}

// TreeText renders tree one node per line, two spaces per level.
func TreeText(tree *ast.Node) string {
	if tree == nil {
		return ""
	}
	type item struct {
		node  *ast.Node
		depth int
	}
	var sb strings.Builder
	stack := []item{{tree, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sb.WriteString(strings.Repeat("  ", it.depth))
		sb.WriteString(it.node.Name)
		sb.WriteByte('\n')
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], it.depth + 1})
		}
	}
	return sb.String()
}
