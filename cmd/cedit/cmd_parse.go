package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cedit/analysis"
	"github.com/dhamidi/cedit/ast"
	"github.com/dhamidi/cedit/csyntax"
	"github.com/dhamidi/cedit/ebnf/parse"
	"github.com/dhamidi/cedit/format"
)

func newParseCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a C file and dump its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}
			src := string(data)

			switch outputFormat {
			case "json", "text":
				res := analysis.Parse(src)
				if len(res.Diagnostics) > 0 {
					color, err := useColor(cmd, os.Stderr)
					if err != nil {
						return err
					}
					format.NewDiagnosticPrinter(os.Stderr, color).Print(filename, src, res.Diagnostics)
				}
				if res.Tree == nil {
					return fmt.Errorf("parse %s: syntax error", filename)
				}
				enc, err := format.NewEncoder(outputFormat, os.Stdout)
				if err != nil {
					return err
				}
				return enc.Encode(ast.Project(res.Tree, csyntax.RuleNames()))
			case "cst":
				enc := format.NewASTJSONEncoder(os.Stdout, csyntax.RuleNames())
				tree, err := csyntax.Parse(src, nil)
				var bail *parse.BailError
				if errors.As(err, &bail) {
					if err := enc.EncodeBail(bail); err != nil {
						return fmt.Errorf("encode json: %w", err)
					}
					fmt.Println()
					return fmt.Errorf("parse %s: %w", filename, err)
				}
				if err != nil {
					return err
				}
				if err := enc.Encode(tree); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
				fmt.Println()
				return nil
			}
			return fmt.Errorf("unknown format: %s", outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text|json|cst)")

	return cmd
}
