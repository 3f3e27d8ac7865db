// Package config loads the scanner configuration.
//
// Values are layered: built-in defaults, then the YAML file, then QRSCAN_*
// environment variables. Command-line flags are applied by the caller last.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/qrscan/internal/constants"
)

// Loader resolves and reads the configuration file.
type Loader struct {
	baseDir string
	lookup  LookupFunc
}

// NewLoader creates a loader. The base directory holding .qrscan/ is resolved
// in this order:
//  1. QRSCAN_CONFIG environment variable.
//  2. User home directory.
//  3. The system temp directory, for environments without a home.
func NewLoader() *Loader {
	return newLoader(os.LookupEnv, os.UserHomeDir)
}

func newLoader(lookup LookupFunc, home func() (string, error)) *Loader {
	if dir, ok := lookup(constants.ConfigDirEnv); ok && dir != "" {
		return &Loader{baseDir: dir, lookup: lookup}
	}
	if dir, err := home(); err == nil && dir != "" {
		return &Loader{baseDir: dir, lookup: lookup}
	}
	return &Loader{baseDir: filepath.Join(os.TempDir(), "qrscan-fallback"), lookup: lookup}
}

// Path returns the default config file path.
func (l *Loader) Path() string {
	return filepath.Join(l.baseDir, constants.DefaultDir, constants.ConfigFile)
}

// Load reads path, or the default path when path is empty. A missing default
// file yields defaults; a missing explicit file is an error. Environment
// overrides are applied and the result is validated.
func (l *Loader) Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = l.Path()
	}

	cfg := Default()

	//nolint:gosec // G304: path is the user's own config file.
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := ApplyEnvFrom(cfg, l.lookup); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, or the default path when path is empty.
func (l *Loader) Save(path string, cfg *Config) error {
	if path == "" {
		path = l.Path()
	}

	//nolint:gosec // G301: directory needs standard permissions for traversal.
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
