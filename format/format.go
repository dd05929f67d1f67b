// Package format renders parse results for people and tools: display trees
// as JSON or indented text, concrete syntax trees as JSON with spans, and
// diagnostics with the offending source line.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/cedit/ast"
)

// Encoder writes display trees.
type Encoder interface {
	Encode(tree *ast.Node) error
}

// NewEncoder returns the display tree encoder named by format: "json" or
// "text".
func NewEncoder(format string, w io.Writer) (Encoder, error) {
	switch format {
	case "json":
		return NewTreeJSONEncoder(w), nil
	case "text":
		return NewTreeTextEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown tree format %q", format)
}
