package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cedit/csyntax"
	"github.com/dhamidi/cedit/ebnf/grammar"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grammar",
		Short:         "EBNF grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newGrammarCheckCmd())
	cmd.AddCommand(newGrammarRulesCmd())
	cmd.AddCommand(newGrammarSourceCmd())

	return cmd
}

// openGrammar returns the named grammar file, or the built-in C grammar when
// args is empty.
func openGrammar(args []string) (string, io.ReadCloser, error) {
	if len(args) == 0 {
		return "c.ebnf", io.NopCloser(strings.NewReader(csyntax.GrammarSource())), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return "", nil, fmt.Errorf("open file: %w", err)
	}
	return args[0], f, nil
}

func newGrammarCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:           "check [file]",
		Short:         "Parse and verify an EBNF grammar file (default: the C grammar)",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename, r, err := openGrammar(args)
			if err != nil {
				return err
			}
			defer r.Close()

			g, err := grammar.Load(filename, r, startProduction)
			if err != nil {
				printErrors(err)
				return err
			}
			fmt.Printf("%s: ok, %d rules from %s\n", filename, len(g.RuleNames()), g.Start())
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", csyntax.StartRule, "start production for verification")

	return cmd
}

func newGrammarRulesCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "rules [file]",
		Short: "List rule indices and names",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename, r, err := openGrammar(args)
			if err != nil {
				return err
			}
			defer r.Close()

			g, err := grammar.Load(filename, r, startProduction)
			if err != nil {
				printErrors(err)
				return err
			}
			for i, name := range g.RuleNames() {
				fmt.Printf("%4d %s\n", i, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", csyntax.StartRule, "start production")

	return cmd
}

func newGrammarSourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "source",
		Short: "Print the built-in C grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(os.Stdout, csyntax.GrammarSource())
			return err
		},
	}
}

// printErrors prints one line per error of an ebnf error list.
func printErrors(err error) {
	var list grammar.ErrorList
	if !errors.As(err, &list) {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	for _, e := range list {
		fmt.Fprintln(os.Stderr, e)
	}
}
