// Package config persists CLI defaults in a yaml file under the app home
// dir, so method and output preferences survive between runs.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/clinsight/comorbid/pkg/scoring"
)

const (
	configFileName = "config.yaml"
	fileMode       = 0600
)

// Config represents the persisted CLI defaults.
type Config struct {
	// DBPath overrides the default Sqlite file location when set.
	DBPath string `yaml:"db,omitempty"`

	// Method is the default weighting method for score and compute.
	Method string `yaml:"method,omitempty"`

	// Format is the default output format (json or yaml).
	Format string `yaml:"format,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Method: string(scoring.DefaultMethod),
		Format: "json",
	}
}

// Load reads the config file from the given dir. A missing file returns the
// defaults, not an error.
func Load(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	path := filepath.Join(dirPath, configFileName)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file: %s", path)
	}
	if c.Method != "" {
		if _, err := scoring.ParseMethod(c.Method); err != nil {
			return nil, errors.Wrapf(err, "invalid method in config file: %s", path)
		}
	}
	return c, nil
}

// Save writes the config to the given dir.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}

	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", path)
	}
	return nil
}
