// ABOUTME: The diff subcommand: per-class statistics between two captures
// ABOUTME: Prints a sortable table with colored deltas and humanized sizes

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prateek/heapdiff/diff"
)

var (
	diffSort string
	diffRows int
)

func init() {
	diffCmd.Flags().StringVar(&diffSort, "sort", "", "sort column (created|deleted|delta)-(count|shallow|retained), or persisted")
	diffCmd.Flags().IntVar(&diffRows, "rows", 0, "maximum rows to print")
}

var diffCmd = &cobra.Command{
	Use:   "diff <before> <after>",
	Short: "Diff two heap captures class by class",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sortName := cfg.Sort
		if diffSort != "" {
			sortName = diffSort
		}
		field, ok := diff.ParseSortField(sortName)
		if !ok {
			return fmt.Errorf("unknown sort column %q", sortName)
		}
		rows := cfg.Rows
		if diffRows > 0 {
			rows = diffRows
		}

		before, after, err := loadPair(args[0], args[1])
		if err != nil {
			return err
		}

		stats := diff.Compute(before, after, nil)
		diff.SortStats(stats, field)
		if len(stats) > rows {
			stats = stats[:rows]
		}

		printStats(stats)
		return nil
	},
}

func printStats(stats []diff.ClassStats) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tKIND\tNEW\tFREED\tΔ COUNT\tΔ SHALLOW\tΔ RETAINED")
	for i := range stats {
		s := &stats[i]
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			s.ClassName, s.Kind,
			s.Created.Count, s.Deleted.Count,
			paintCount(s.Delta.Count),
			paintBytes(s.Delta.ShallowBytes),
			paintBytes(s.Delta.RetainedBytes))
	}
	w.Flush()
}

// paintCount colors growth red and shrinkage green; leaks are what we look
// for, so more memory is the bad direction.
func paintCount(v int64) string {
	return paint(v, fmt.Sprintf("%+d", v))
}

func paintBytes(v int64) string {
	text := "+" + humanize.IBytes(uint64(v))
	if v < 0 {
		text = "-" + humanize.IBytes(uint64(-v))
	}
	return paint(v, text)
}

func paint(v int64, text string) string {
	if noColor || v == 0 {
		return text
	}
	if v > 0 {
		return color.New(color.FgRed).Sprint(text)
	}
	return color.New(color.FgGreen).Sprint(text)
}
