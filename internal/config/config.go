package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mimicgo/mimic/internal/errors"
)

// DefaultFileName is the per-project configuration file looked up next to
// go.mod
const DefaultFileName = ".mimic.toml"

// DefaultOutputFile is the generated file name written into each package
const DefaultOutputFile = "autogen_doubles.go"

// Config carries the project-wide generation settings. Directive
// parameters override it per target.
type Config struct {
	// OutputFile is the generated file name per package
	OutputFile string `toml:"output_file"`

	// NamePrefix replaces the default "Mimic" prefix on generated names
	NamePrefix string `toml:"name_prefix"`

	// DefaultKind is the kind used when a directive names none ("mock" or
	// "stub")
	DefaultKind string `toml:"default_kind"`

	// DefaultClone is the clone policy used when a directive names none
	// ("double", "proxy" or "forbid")
	DefaultClone string `toml:"default_clone"`

	// GenerateReturns controls whether unconfigured calls on generated
	// doubles yield zero values by default
	GenerateReturns bool `toml:"generate_returns"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		OutputFile:      DefaultOutputFile,
		DefaultKind:     "mock",
		DefaultClone:    "double",
		GenerateReturns: true,
	}
}

// Load reads a configuration file and fills unset fields with defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(errors.ConfigurationErrorCode, err,
			"failed to load configuration from %s", path)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover looks for the configuration file next to the nearest go.mod,
// starting at dir. Absence is not an error; defaults apply.
func Discover(dir string) (*Config, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ConfigurationErrorCode,
			"failed to resolve configuration directory", err)
	}

	for {
		candidate := filepath.Join(current, DefaultFileName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return Default(), nil
}

func (c *Config) validate() error {
	if c.OutputFile == "" {
		c.OutputFile = DefaultOutputFile
	}
	if filepath.Base(c.OutputFile) != c.OutputFile {
		return errors.Newf(errors.ConfigurationErrorCode,
			"output_file must be a bare file name, got %q", c.OutputFile)
	}
	switch c.DefaultKind {
	case "", "mock", "stub":
	default:
		return errors.Newf(errors.ConfigurationErrorCode,
			"default_kind must be mock or stub, got %q", c.DefaultKind)
	}
	switch c.DefaultClone {
	case "", "double", "proxy", "forbid":
	default:
		return errors.Newf(errors.ConfigurationErrorCode,
			"default_clone must be double, proxy or forbid, got %q", c.DefaultClone)
	}
	return nil
}
