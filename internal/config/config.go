// Package config loads workstation configuration: the default actor
// identity, size ceilings, and the tracking database location. All
// settings are optional; a missing file yields pure defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ifs-audit/actionplan/internal/audit"
)

// DefaultFileName is looked up in the working directory and then the
// user's home directory when no --config flag is given.
const DefaultFileName = ".ifsaudit.yaml"

// Config is the on-disk configuration shape.
type Config struct {
	Actor struct {
		Name string `yaml:"name"`
		Role string `yaml:"role"`
	} `yaml:"actor"`

	Limits struct {
		// MaxEvidenceMB caps a single attachment. Zero means the
		// built-in default.
		MaxEvidenceMB int64 `yaml:"maxEvidenceMB"`
		// WarnPackageMB is the advisory uncompressed-package ceiling.
		WarnPackageMB int64 `yaml:"warnPackageMB"`
		// EnforcePackage turns the advisory ceiling into a hard limit.
		EnforcePackage bool `yaml:"enforcePackage"`
	} `yaml:"limits"`

	// ReadTrackDB is the path of the local read-tracking database.
	// Empty disables tracking.
	ReadTrackDB string `yaml:"readTrackDB"`
}

// Default returns the zero configuration with the tracking database in
// the user's home directory.
func Default() *Config {
	cfg := &Config{}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.ReadTrackDB = filepath.Join(home, ".ifsaudit.db")
	}
	return cfg
}

// Load reads the configuration from path, or from the default lookup
// locations when path is empty. A missing file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = findDefault()
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Actor.Role != "" {
		if _, err := audit.ParseRole(cfg.Actor.Role); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return cfg, nil
}

func findDefault() string {
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultFileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
