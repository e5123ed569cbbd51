package main

import (
	"github.com/spf13/cobra"

	"flowmap/internal/version"
)

var (
	// jsonOutput switches command output to JSON
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "flowmap",
	Short: "flowmap - flow annotations that survive refactoring",
	Long: `flowmap tracks named flows declared in source comments. Edges are exported
into a per-repository database keyed by commit, and later scans classify each
edge as loaded, moved, missing, or duplicated. Any annotation can be remapped
to its present-day location with a graded confidence outcome.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("flowmap version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Emit machine-readable JSON instead of human output")
}
