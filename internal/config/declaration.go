package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"flowmap/internal/errors"
)

// DeclarationFileName is the optional repo-local declaration, kept in TOML so
// it reads well next to the code it describes:
//
//	tag = "@flow"
//	roots = ["src", "services"]
//	exclude = ["src/generated/"]
const DeclarationFileName = "flowmap.toml"

// Declaration is the repo-local scan declaration.
type Declaration struct {
	Tag     string   `toml:"tag"`
	Roots   []string `toml:"roots"`
	Exclude []string `toml:"exclude"`
}

// LoadDeclaration reads flowmap.toml at the repo root. A missing file returns
// (nil, nil).
func LoadDeclaration(repoRoot string) (*Declaration, error) {
	path := filepath.Join(repoRoot, DeclarationFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New(errors.ConfigInvalid, "failed to read flowmap.toml", err)
	}

	var decl Declaration
	if err := toml.Unmarshal(data, &decl); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "failed to parse flowmap.toml", err)
	}
	return &decl, nil
}
