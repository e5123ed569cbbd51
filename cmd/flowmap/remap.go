package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowmap/internal/flow"
	"flowmap/internal/gitutil"
	"flowmap/internal/remap"
	"flowmap/internal/storage"
)

var remapCmd = &cobra.Command{
	Use:   "remap <flow>",
	Short: "Remap every stored annotation of a flow to its current location",
	Long: `Hydrates one flow: each stored annotation is translated from its recorded
commit and line to the current working tree, reporting an auto-resolved
location, a ranked candidate list, or an unmapped outcome.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemap,
}

func init() {
	rootCmd.AddCommand(remapCmd)
}

func runRemap(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	db, err := storage.Open(env.RepoRoot, env.Logger)
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := db.LoadFlow(args[0])
	if err != nil {
		return err
	}

	resolver := remap.NewResolver(env.Logger)
	results := resolver.RemapFlow(cmd.Context(), record, gitutil.NewLoader(env.RepoRoot))

	if jsonOutput {
		return printJSON(results)
	}

	for _, res := range results {
		printResolution(res)
	}
	return nil
}

func printResolution(res remap.AnnotationResolution) {
	ann := res.Annotation
	header := fmt.Sprintf("  %s @ %s:%d", ann.Edge, ann.Path, ann.Line)

	switch res.Resolution.Kind {
	case flow.ResolutionAuto:
		fmt.Printf("%s\n    -> line %d (%.2f, %s)\n",
			header, res.Resolution.Line, res.Resolution.Confidence, res.Resolution.Source)
	case flow.ResolutionCandidates:
		fmt.Printf("%s\n    ambiguous, %d candidates:\n", header, len(res.Resolution.Candidates))
		for _, c := range res.Resolution.Candidates {
			fmt.Printf("      line %d (%.2f, %s)\n", c.Line, c.Score, c.Source)
		}
	case flow.ResolutionUnmapped:
		fmt.Printf("%s\n    unmapped (%s)\n", header, res.Resolution.Reason)
	}
}
