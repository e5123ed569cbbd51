package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowmap/internal/export"
	"flowmap/internal/flow"
	"flowmap/internal/gitutil"
	"flowmap/internal/scanner"
	"flowmap/internal/storage"
)

var (
	exportOut      string
	exportFormat   string
	exportCompress bool
)

var exportCmd = &cobra.Command{
	Use:   "export [flow]",
	Short: "Record the current scan as annotations at HEAD",
	Long: `Scans the working tree and persists every flow comment as an annotation
anchored at the HEAD commit, replacing previously stored records per flow.
With a flow argument, only that flow is replaced. --out additionally writes a
portable bundle of the stored flows.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Also write a bundle file to this path")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Bundle format: json or yaml")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "Compress the bundle with zstd")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	commit, err := gitutil.HeadCommit(env.RepoRoot)
	if err != nil {
		return err
	}
	repoID := gitutil.RepoID(env.RepoRoot)

	result, err := scanner.NewScanner(env.RepoRoot, env.Logger).Scan(cmd.Context(), env.scanOptions())
	if err != nil {
		return err
	}

	exporter := export.NewExporter(env.RepoRoot, env.Cfg.Tag, env.Logger)
	records := exporter.BuildRecords(cmd.Context(), result.Comments, commit, repoID)

	if len(args) == 1 {
		records = filterFlow(records, args[0])
		if len(records) == 0 {
			return fmt.Errorf("no comments found for flow %q", args[0])
		}
	}

	db, err := storage.Open(env.RepoRoot, env.Logger)
	if err != nil {
		return err
	}
	defer db.Close()

	total := 0
	for _, record := range records {
		if err := db.ReplaceFlow(record); err != nil {
			return err
		}
		total += len(record.Annotations)
	}

	if exportOut != "" {
		stored, err := db.LoadFlows()
		if err != nil {
			return err
		}
		bundle := export.NewBundle(repoID, commit, stored)
		if err := bundle.WriteFile(exportOut, export.BundleFormat(exportFormat), exportCompress); err != nil {
			return err
		}
	}

	if jsonOutput {
		return printJSON(map[string]interface{}{
			"commit":      commit,
			"flows":       len(records),
			"annotations": total,
		})
	}

	fmt.Printf("Exported %d flows (%d annotations) at %.12s\n", len(records), total, commit)
	if exportOut != "" {
		fmt.Printf("Bundle written to %s\n", exportOut)
	}
	return nil
}

func filterFlow(records []flow.FlowRecord, name string) []flow.FlowRecord {
	for _, r := range records {
		if r.Name == name {
			return []flow.FlowRecord{r}
		}
	}
	return nil
}
