// ABOUTME: The top subcommand: classes holding the most retained memory
// ABOUTME: Single-capture view backing "what is my heap made of"

package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/prateek/heapdiff/classes"
)

var topRows int

func init() {
	topCmd.Flags().IntVar(&topRows, "rows", 0, "maximum rows to print")
}

var topCmd = &cobra.Command{
	Use:   "top <capture>",
	Short: "Show the classes retaining the most memory in one capture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rows := cfg.Rows
		if topRows > 0 {
			rows = topRows
		}

		idx, err := loadIndex(args[0])
		if err != nil {
			return err
		}

		var sets []*classes.ObjectSet
		idx.ForEach(func(set *classes.ObjectSet) {
			sets = append(sets, set)
		})
		sort.Slice(sets, func(i, j int) bool {
			if sets[i].RetainedBytes != sets[j].RetainedBytes {
				return sets[i].RetainedBytes > sets[j].RetainedBytes
			}
			return sets[i].Class.Name < sets[j].Class.Name
		})
		if len(sets) > rows {
			sets = sets[:rows]
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CLASS\tKIND\tCOUNT\tSHALLOW\tRETAINED")
		for _, set := range sets {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				set.Class.Name, set.Class.Kind,
				set.Count,
				humanize.IBytes(set.ShallowBytes),
				humanize.IBytes(set.RetainedBytes))
		}
		return w.Flush()
	},
}
