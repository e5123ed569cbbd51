package export

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"flowmap/internal/flow"
	"flowmap/internal/version"
)

// BundleFormat selects the bundle serialization.
type BundleFormat string

const (
	FormatJSON BundleFormat = "json"
	FormatYAML BundleFormat = "yaml"
)

// Bundle is a portable snapshot of the flow database, for review or for
// checking into the repository alongside the code it annotates.
type Bundle struct {
	Version     string            `json:"version" yaml:"version"`
	RepoID      string            `json:"repoId" yaml:"repoId"`
	Commit      string            `json:"commit" yaml:"commit"`
	GeneratedAt string            `json:"generatedAt" yaml:"generatedAt"`
	Flows       []flow.FlowRecord `json:"flows" yaml:"flows"`
}

// NewBundle assembles a bundle from stored records.
func NewBundle(repoID, commit string, flows []flow.FlowRecord) *Bundle {
	return &Bundle{
		Version:     version.Version,
		RepoID:      repoID,
		Commit:      commit,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Flows:       flows,
	}
}

// WriteFile serializes the bundle to path. Format defaults to JSON; a
// ".zst" suffix on path or compress=true wraps the output in zstd.
func (b *Bundle) WriteFile(path string, format BundleFormat, compress bool) error {
	data, err := b.encode(format)
	if err != nil {
		return err
	}

	if compress || strings.HasSuffix(path, ".zst") {
		compressed, err := compressZstd(data)
		if err != nil {
			return fmt.Errorf("failed to compress bundle: %w", err)
		}
		data = compressed
		if !strings.HasSuffix(path, ".zst") {
			path += ".zst"
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	return nil
}

func (b *Bundle) encode(format BundleFormat) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(b)
	case FormatJSON, "":
		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown bundle format %q", format)
	}
}

func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// ReadFile loads a bundle written by WriteFile, detecting zstd and YAML by
// file suffix.
func ReadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	name := path
	if strings.HasSuffix(name, ".zst") {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress bundle: %w", err)
		}
		name = strings.TrimSuffix(name, ".zst")
	}

	var bundle Bundle
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		err = yaml.Unmarshal(data, &bundle)
	} else {
		err = json.Unmarshal(data, &bundle)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return &bundle, nil
}
