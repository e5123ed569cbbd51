package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowmap/internal/gitutil"
	"flowmap/internal/scanner"
	"flowmap/internal/status"
	"flowmap/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status [flow]",
	Short: "Show detailed reconciliation for stored flows",
	Long: `Reconciles stored annotations with the current scan and itemizes duplicated,
missing, and moved edges. Files with uncommitted changes are flagged because
their stored line numbers may be stale until the next export.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusOutput struct {
	Flows        []status.Report               `json:"flows"`
	ChangedFiles map[string]gitutil.FileChange `json:"changedFiles,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	db, err := storage.Open(env.RepoRoot, env.Logger)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.LoadFlows()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		record, err := db.LoadFlow(args[0])
		if err != nil {
			return err
		}
		records = records[:0]
		records = append(records, record)
	}

	result, err := scanner.NewScanner(env.RepoRoot, env.Logger).Scan(cmd.Context(), env.scanOptions())
	if err != nil {
		return err
	}
	grouped := scanner.GroupByFlow(result.Comments)

	out := statusOutput{}
	annotated := make(map[string]bool)
	for _, record := range records {
		out.Flows = append(out.Flows, status.ComputeFlowStatus(record, grouped[record.Name]))
		for _, ann := range record.Annotations {
			annotated[ann.Path] = true
		}
	}

	// Uncommitted edits to annotated files make stored line numbers suspect.
	if changes, chErr := gitutil.ChangedFiles(env.RepoRoot); chErr == nil {
		relevant := make(map[string]gitutil.FileChange)
		for path, change := range changes {
			if annotated[path] {
				relevant[path] = change
			}
		}
		if len(relevant) > 0 {
			out.ChangedFiles = relevant
		}
	} else {
		env.Logger.Warn("Change detection unavailable", map[string]interface{}{
			"error": chErr.Error(),
		})
	}

	if jsonOutput {
		return printJSON(out)
	}

	for _, r := range out.Flows {
		printFlowSummary(r)
		for _, d := range r.Duplicates {
			fmt.Printf("      duplicate %s\n", d.Edge)
			for _, loc := range d.Locations {
				fmt.Printf("        at %s\n", edgeLocation(loc))
			}
		}
		for _, m := range r.Missing {
			fmt.Printf("      missing   %s (was %s)\n", m.Edge, edgeLocation(m.Stored))
		}
		for _, m := range r.Moved {
			fmt.Printf("      moved     %s: %s -> %s\n", m.Edge, edgeLocation(m.Stored), edgeLocation(m.Current))
		}
	}

	if len(out.ChangedFiles) > 0 {
		fmt.Println("\nAnnotated files with uncommitted changes:")
		for path, change := range out.ChangedFiles {
			switch {
			case change.Deleted:
				fmt.Printf("  %s (deleted)\n", path)
			case change.Renamed:
				fmt.Printf("  %s (renamed, +%d -%d)\n", path, change.AddedLines, change.RemovedLines)
			default:
				fmt.Printf("  %s (+%d -%d)\n", path, change.AddedLines, change.RemovedLines)
			}
		}
	}
	return nil
}
