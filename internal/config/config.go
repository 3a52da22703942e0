// Package config loads sitetidy settings from sitetidy.toml and rename tables
// from standalone TOML or YAML map files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/f4ah6o/sitetidy-go/internal/plan"
	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

// DefaultFile is the configuration file looked up in the working directory
// when no explicit path is given.
const DefaultFile = "sitetidy.toml"

// Config represents the structure of sitetidy.toml
type Config struct {
	Root string   `toml:"root"`
	Skip []string `toml:"skip"`

	Check struct {
		Fragments        bool `toml:"fragments"`
		UnescapeEntities bool `toml:"unescape_entities"`
	} `toml:"check"`

	Rewrite struct {
		Mode string `toml:"mode"`
	} `toml:"rewrite"`

	Rename plan.Table `toml:"rename"`
}

// Default returns the settings used when no configuration file exists.
func Default() *Config {
	return &Config{
		Root: ".",
		Skip: append([]string(nil), tree.DefaultSkip...),
	}
}

// Load reads the configuration at path. An empty path means DefaultFile,
// which may be absent; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, nil
	}

	// Keys absent from the file keep their defaults.
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if err := cfg.Rename.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rename table in %s: %w", path, err)
	}
	return cfg, nil
}

type tableFile struct {
	Rename plan.Table `toml:"rename" yaml:"rename"`
}

// LoadTable reads a rename table from a .toml or .yaml/.yml file. Both
// formats hold a "rename" list of from/to entries.
func LoadTable(path string) (plan.Table, error) {
	var f tableFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported map file %s: use .toml, .yaml or .yml", path)
	}

	if len(f.Rename) == 0 {
		return nil, fmt.Errorf("no rename entries in %s", path)
	}
	if err := f.Rename.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rename table in %s: %w", path, err)
	}
	return f.Rename, nil
}
