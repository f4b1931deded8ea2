package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/local/labelsorter/internal/labels"
	"github.com/local/labelsorter/internal/orchestrator"
	"github.com/local/labelsorter/internal/report"
)

type sortOptions struct {
	output  string
	format  string
	workers int
	quiet   bool
}

func newSortCmd() *cobra.Command {
	opts := &sortOptions{}
	cmd := &cobra.Command{
		Use:   "sort <labels.pdf>",
		Short: "Reorder label pairs so identical products are adjacent",
		Long: `Reads a PDF where every shipping label spans two pages (shipment slip, product label),
recognizes product name and quantity on each label page and writes the pairs ordered by
name, quantity and original position. A trailing unpaired page is dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>_sorted_<DD-MM-YYYY>.pdf next to the input)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "stats format: text or markdown")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 1, "label pages extracted in parallel")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print progress")
	return cmd
}

func runSort(cmd *cobra.Command, in string, opts *sortOptions) error {
	if opts.format != "text" && opts.format != "markdown" {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	out := opts.output
	if out == "" {
		out = filepath.Join(filepath.Dir(in), report.OutputFilename(in, time.Now()))
	}

	errOut := cmd.ErrOrStderr()
	g := &labels.Grouper{Workers: opts.workers}
	if !opts.quiet {
		g.OnPair = func(done, total int) {
			fmt.Fprintf(errOut, "\rreading labels %d/%d", done, total)
			if done == total {
				fmt.Fprintln(errOut)
			}
		}
	}

	res, err := orchestrator.SortFile(cmd.Context(), in, out, g)
	if err != nil {
		return err
	}
	if res.Dropped {
		fmt.Fprintln(errOut, "note: odd page count, last page dropped")
	}

	groups := labels.Summarize(res.Pairs)
	w := cmd.OutOrStdout()
	if opts.format == "markdown" {
		if err := report.Markdown(w, "Label groups: "+filepath.Base(in), groups); err != nil {
			return err
		}
	} else if err := report.Text(w, groups); err != nil {
		return err
	}
	fmt.Fprintf(errOut, "wrote %s\n", out)
	return nil
}
