package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowmap/internal/errors"
	"flowmap/internal/flow"
	"flowmap/internal/gitutil"
	"flowmap/internal/remap"
	"flowmap/internal/storage"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates <flow> <current> <next>",
	Short: "Search current code for one stored edge's context",
	Long: `Runs the staged candidate search for a single stored edge against the
current content of its file, without the diff fast path. Useful for edges the
status command reported moved or missing.`,
	Args: cobra.ExactArgs(3),
	RunE: runCandidates,
}

func init() {
	rootCmd.AddCommand(candidatesCmd)
}

func runCandidates(cmd *cobra.Command, args []string) error {
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

	key := flow.EdgeKey{FlowName: args[0], CurrentNode: args[1], NextNode: args[2]}
	var ann *flow.Annotation
	for i := range record.Annotations {
		if record.Annotations[i].Edge == key {
			ann = &record.Annotations[i]
			break
		}
	}
	if ann == nil {
		return errors.New(errors.EdgeNotFound,
			fmt.Sprintf("edge %q is not part of flow %q", key, args[0]), nil)
	}

	loader := gitutil.NewLoader(env.RepoRoot)
	content, ok, err := loader.CurrentFile(cmd.Context(), ann.Path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("file %s no longer exists", ann.Path)
	}

	resolver := remap.NewResolver(env.Logger)
	candidates := resolver.FindCandidates(cmd.Context(), ann.Path, content, ann.Context, ann.SymbolPath)

	if jsonOutput {
		return printJSON(candidates)
	}

	if len(candidates) == 0 {
		fmt.Printf("No candidates for %s in %s\n", key, ann.Path)
		return nil
	}
	fmt.Printf("Candidates for %s in %s:\n", key, ann.Path)
	for _, c := range candidates {
		fmt.Printf("  line %d (%.2f, %s)", c.Line, c.Score, c.Source)
		if c.SymbolPath != "" {
			fmt.Printf("  in %s", c.SymbolPath)
		}
		fmt.Println()
	}
	return nil
}
