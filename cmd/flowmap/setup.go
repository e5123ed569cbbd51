package main

import (
	"encoding/json"
	"fmt"
	"os"

	"flowmap/internal/config"
	"flowmap/internal/errors"
	"flowmap/internal/gitutil"
	"flowmap/internal/logging"
	"flowmap/internal/scanner"
)

// appEnv bundles what every command needs: the repo root, loaded config, and
// a logger honoring the configured level and format.
type appEnv struct {
	RepoRoot string
	Cfg      *config.Config
	Logger   *logging.Logger
}

func loadEnv() (*appEnv, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.New(errors.InternalError, "failed to get current directory", err)
	}

	root, err := gitutil.RepoRoot(cwd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
	})

	return &appEnv{RepoRoot: root, Cfg: cfg, Logger: logger}, nil
}

// scanOptions maps config onto scanner options.
func (e *appEnv) scanOptions() scanner.Options {
	return scanner.Options{
		Tag:           e.Cfg.Tag,
		Roots:         e.Cfg.Scan.Roots,
		ExcludePaths:  e.Cfg.Scan.Exclude,
		ContextBefore: e.Cfg.Scan.ContextBefore,
		ContextAfter:  e.Cfg.Scan.ContextAfter,
	}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
