// Package toml loads [sous.Config] from TOML files.
package toml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/sous"
)

// DefaultPath returns ~/.sous/config.toml, or "" when the home directory is
// unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sous", "config.toml")
}

// Load reads the config file at path over the defaults. Keys absent from
// the file keep their default values; unknown keys are an error. The result
// is not validated, so callers can apply overrides first.
func Load(path string) (sous.Config, error) {
	cfg := sous.DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return sous.Config{}, fmt.Errorf("toml: %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return sous.Config{}, fmt.Errorf("toml: %s: unknown keys %s: %w", path, strings.Join(keys, ", "), sous.ErrValidation)
	}
	return cfg, nil
}

// LoadDefault loads the file at DefaultPath, returning the defaults when it
// does not exist.
func LoadDefault() (sous.Config, error) {
	path := DefaultPath()
	if path == "" {
		return sous.DefaultConfig(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return sous.DefaultConfig(), nil
	}
	return cfg, err
}
