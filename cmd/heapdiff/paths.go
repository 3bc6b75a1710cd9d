// ABOUTME: The paths subcommand: who retains one object
// ABOUTME: Prints reference paths to roots and the dominator chain

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/prateek/heapdiff/capture"
	"github.com/prateek/heapdiff/graph"
)

var pathsMax int

func init() {
	pathsCmd.Flags().IntVar(&pathsMax, "max", 0, "maximum number of paths to print")
}

var pathsCmd = &cobra.Command{
	Use:   "paths <capture> <object-id>",
	Short: "Show reference paths from an object back to the GC roots",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		maxPaths := cfg.MaxPaths
		if pathsMax > 0 {
			maxPaths = pathsMax
		}

		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid object id %q", args[1])
		}
		target := graph.ObjID(id)

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		g, err := capture.Open(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if g.GetObject(target) == nil {
			return fmt.Errorf("object %d not in capture", target)
		}

		paths := graph.PathsToRoots(g, target, maxPaths)
		if len(paths) == 0 {
			fmt.Println("unreachable from any GC root")
			return nil
		}
		for i, p := range paths {
			fmt.Printf("path %d:", i+1)
			for _, step := range p.IDs {
				fmt.Printf(" %s", describe(g, step))
			}
			fmt.Println()
		}

		idom := graph.Dominators(g)
		fmt.Print("dominators:")
		for _, step := range graph.DominatorPath(idom, target) {
			if step == graph.SuperRoot {
				fmt.Print(" <root>")
				continue
			}
			fmt.Printf(" %s", describe(g, step))
		}
		fmt.Println()
		return nil
	},
}

func describe(g graph.Graph, id graph.ObjID) string {
	obj := g.GetObject(id)
	if obj == nil {
		return fmt.Sprintf("#%d", id)
	}
	if c := g.GetClass(obj.Class); c != nil {
		return fmt.Sprintf("#%d(%s)", id, c.Name)
	}
	return fmt.Sprintf("#%d", id)
}
