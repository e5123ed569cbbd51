package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"flowmap/internal/config"
	"flowmap/internal/errors"
	"flowmap/internal/gitutil"
	"flowmap/internal/logging"
	"flowmap/internal/storage"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize flowmap in the current repository",
	Long:  "Creates a .flowmap/ directory with default configuration and an empty flow database at the repository root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .flowmap directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := logging.NewDefault()

	cwd, err := os.Getwd()
	if err != nil {
		return errors.New(errors.InternalError, "failed to get current directory", err)
	}

	root, err := gitutil.RepoRoot(cwd)
	if err != nil {
		return err
	}

	stateDir := filepath.Join(root, config.ConfigDirName)
	if _, statErr := os.Stat(stateDir); statErr == nil {
		if !initForce {
			// Idempotent: already initialized is success.
			fmt.Println("flowmap already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(stateDir, "config.json"))
			return nil
		}
		if removeErr := os.RemoveAll(stateDir); removeErr != nil {
			return errors.New(errors.InternalError, "failed to remove existing .flowmap directory", removeErr)
		}
	}

	cfg := config.Default(root)
	if err := cfg.Save(); err != nil {
		return err
	}

	db, err := storage.Open(root, logger)
	if err != nil {
		return errors.New(errors.DBError, "failed to create flow database", err)
	}
	defer db.Close()

	fmt.Println("flowmap initialized.")
	fmt.Printf("Configuration written to: %s\n", filepath.Join(stateDir, "config.json"))
	fmt.Printf("Flow database at: %s\n", filepath.Join(stateDir, storage.DBFileName))
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Annotate code with %q comments, e.g. // %s checkout: cart -> payment\n", cfg.Tag, cfg.Tag)
	fmt.Println("  2. Run 'flowmap export' to record them at the current commit")
	return nil
}
