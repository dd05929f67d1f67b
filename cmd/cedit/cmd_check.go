package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/cedit/analysis"
	"github.com/dhamidi/cedit/format"
)

type checkResult struct {
	filename string
	source   string
	diags    []analysis.Diagnostic
}

func newCheckCmd() *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:           "check <file>...",
		Short:         "Report syntax errors in C files",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			color, err := useColor(cmd, os.Stdout)
			if err != nil {
				return err
			}
			if jobs <= 0 {
				jobs = runtime.GOMAXPROCS(0)
			}

			results := make([]checkResult, len(args))
			g, gctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(min(jobs, len(args)))
			for i, filename := range args {
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					data, err := os.ReadFile(filename)
					if err != nil {
						return fmt.Errorf("read %s: %w", filename, err)
					}
					src := string(data)
					results[i] = checkResult{filename: filename, source: src, diags: analysis.Parse(src).Diagnostics}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}

			printer := format.NewDiagnosticPrinter(os.Stdout, color)
			total := 0
			for _, r := range results {
				total += len(r.diags)
				if err := printer.Print(r.filename, r.source, r.diags); err != nil {
					return err
				}
			}
			if total > 0 {
				err := fmt.Errorf("%d problem(s) in %d file(s)", total, len(args))
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files parsed in parallel (default GOMAXPROCS)")

	return cmd
}
