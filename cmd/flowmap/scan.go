package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowmap/internal/flow"
	"flowmap/internal/scanner"
	"flowmap/internal/status"
	"flowmap/internal/storage"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover flow comments and reconcile them against the database",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// scanOutput is the machine-readable scan result.
type scanOutput struct {
	FilesScanned int             `json:"filesScanned"`
	Comments     int             `json:"comments"`
	ParseErrors  int             `json:"parseErrors"`
	Flows        []status.Report `json:"flows"`
	// Unexported lists flows seen in the scan with no stored record yet.
	Unexported []string `json:"unexported,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	result, err := scanner.NewScanner(env.RepoRoot, env.Logger).Scan(cmd.Context(), env.scanOptions())
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

	grouped := scanner.GroupByFlow(result.Comments)
	out := scanOutput{
		FilesScanned: result.FilesScanned,
		Comments:     len(result.Comments),
		ParseErrors:  result.ParseErrors,
	}

	stored := make(map[string]bool, len(records))
	for _, record := range records {
		stored[record.Name] = true
		out.Flows = append(out.Flows, status.ComputeFlowStatus(record, grouped[record.Name]))
	}
	for name := range grouped {
		if !stored[name] {
			out.Unexported = append(out.Unexported, name)
		}
	}

	if jsonOutput {
		return printJSON(out)
	}

	fmt.Printf("Scanned %d files, found %d flow comments (%d malformed)\n",
		out.FilesScanned, out.Comments, out.ParseErrors)
	for _, report := range out.Flows {
		printFlowSummary(report)
	}
	for _, name := range out.Unexported {
		fmt.Printf("  %-20s (not exported; %d comments)\n", name, len(grouped[name]))
	}
	return nil
}

func printFlowSummary(r status.Report) {
	marker := map[status.FlowStatus]string{
		status.StatusLoaded:     "ok",
		status.StatusMoved:      "moved",
		status.StatusMissing:    "MISSING",
		status.StatusDuplicates: "DUPLICATES",
		status.StatusPartial:    "partial",
	}[r.Status]

	line := fmt.Sprintf("  %-20s %s (%d/%d", r.Flow, marker, r.Present, r.Total)
	if r.Extras > 0 {
		line += fmt.Sprintf(", %d extra", r.Extras)
	}
	line += ")"
	if r.Dirty {
		line += "  re-export recommended"
	}
	fmt.Println(line)
}

// edgeLocation renders a location for human output.
func edgeLocation(loc flow.Location) string {
	return fmt.Sprintf("%s:%d", loc.Path, loc.Line)
}
