// Package config loads flowmap configuration: the tool config under
// .flowmap/config.json and an optional repo-local flowmap.toml declaring the
// comment tag and scan roots.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"flowmap/internal/errors"
)

// ConfigDirName is the per-repo state directory.
const ConfigDirName = ".flowmap"

// Config represents the complete flowmap configuration.
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Tag     string        `json:"tag" mapstructure:"tag"`
	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ScanConfig controls comment discovery.
type ScanConfig struct {
	Roots         []string `json:"roots" mapstructure:"roots"`
	Exclude       []string `json:"exclude" mapstructure:"exclude"`
	ContextBefore int      `json:"contextBefore" mapstructure:"contextBefore"`
	ContextAfter  int      `json:"contextAfter" mapstructure:"contextAfter"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// Default returns the configuration used when no config file exists.
func Default(repoRoot string) *Config {
	return &Config{
		Version:  1,
		RepoRoot: repoRoot,
		Tag:      "@flow",
		Scan: ScanConfig{
			Roots:         []string{"."},
			ContextBefore: 2,
			ContextAfter:  2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "human",
		},
	}
}

// Load reads .flowmap/config.json (missing file is not an error; defaults
// apply) and then overlays the repo-local flowmap.toml declaration when one
// exists.
func Load(repoRoot string) (*Config, error) {
	cfg := Default(repoRoot)

	path := filepath.Join(repoRoot, ConfigDirName, "config.json")
	if _, err := os.Stat(path); err == nil {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New(errors.ConfigInvalid, "failed to read config", err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, errors.New(errors.ConfigInvalid, "failed to parse config", err)
		}
	}
	cfg.RepoRoot = repoRoot

	decl, err := LoadDeclaration(repoRoot)
	if err != nil {
		return nil, err
	}
	if decl != nil {
		if decl.Tag != "" {
			cfg.Tag = decl.Tag
		}
		if len(decl.Roots) > 0 {
			cfg.Scan.Roots = decl.Roots
		}
		if len(decl.Exclude) > 0 {
			cfg.Scan.Exclude = append(cfg.Scan.Exclude, decl.Exclude...)
		}
	}

	return cfg, nil
}

// Save writes the config under .flowmap/, creating the directory if needed.
func (c *Config) Save() error {
	dir := filepath.Join(c.RepoRoot, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New(errors.ConfigInvalid, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.ConfigInvalid, "failed to encode config", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.ConfigInvalid, "failed to write config", err)
	}
	return nil
}
