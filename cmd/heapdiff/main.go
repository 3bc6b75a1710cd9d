// ABOUTME: Entry point for the heapdiff CLI
// ABOUTME: Registers subcommands and global flags on the cobra root

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/prateek/heapdiff"
)

var rootCmd = &cobra.Command{
	Use:   "heapdiff",
	Short: "Heap snapshot diff engine",
	Long:  `heapdiff analyzes raw heap captures: per-class retained sizes, top retainers, and differential statistics between two snapshots.`,
}

func main() {
	rootCmd.Version = heapdiff.Version

	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(pathsCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
