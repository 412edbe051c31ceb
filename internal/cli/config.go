package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config is the optional CLI config file (~/.config/ccf/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	LogLevel      string  `yaml:"log_level"`
	LogHuman      *bool   `yaml:"log_human"`
	FormatVersion *uint16 `yaml:"format_version"`
	S3Region      string  `yaml:"s3_region"`
	WriteManifest *bool   `yaml:"write_manifest"`
}

// DefaultConfigPath returns the default config file location, or "" when
// the user config directory is unknown.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ccf", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields a zero
// Config; a file that exists but does not parse is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// settings are the effective values after applying flags over the config file.
type settings struct {
	LogLevel      string
	LogHuman      bool
	FormatVersion uint16
	S3Region      string
	WriteManifest bool
}

// resolve applies config file values to flags the user did not set.
func resolve(cmd *cli.Command, cfg Config) settings {
	s := settings{
		LogLevel:      cmd.String("log-level"),
		LogHuman:      cmd.Bool("log-human"),
		FormatVersion: uint16(cmd.Uint("format-version")),
		S3Region:      cmd.String("region"),
		WriteManifest: cmd.Bool("manifest"),
	}
	if cfg.LogLevel != "" && !cmd.IsSet("log-level") {
		s.LogLevel = cfg.LogLevel
	}
	if cfg.LogHuman != nil && !cmd.IsSet("log-human") {
		s.LogHuman = *cfg.LogHuman
	}
	if cfg.FormatVersion != nil && !cmd.IsSet("format-version") {
		s.FormatVersion = *cfg.FormatVersion
	}
	if cfg.S3Region != "" && !cmd.IsSet("region") {
		s.S3Region = cfg.S3Region
	}
	if cfg.WriteManifest != nil && !cmd.IsSet("manifest") {
		s.WriteManifest = *cfg.WriteManifest
	}
	return s
}
