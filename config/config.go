// Package config loads cedit's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appDirName = "cedit"

// Config matches cedit/config.yaml in the user's configuration directory.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects where sessions are kept.
type StorageConfig struct {
	Backend string `yaml:"backend"` // sqlite, file or memory
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
	Codec   string `yaml:"codec"` // json or msgpack
}

// ServerConfig configures the HTTP editor.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig describes log output.
type LogConfig struct {
	Verbosity int    `yaml:"verbosity"`
	File      string `yaml:"file"`
}

// Dir returns the directory holding cedit's configuration and data.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = "."
	}
	return filepath.Join(base, appDirName)
}

// DefaultPath returns the default location of config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    filepath.Join(Dir(), "sessions.db"),
			Key:     "myProjects",
			Codec:   "json",
		},
		Server: ServerConfig{Addr: "localhost:8080"},
		Log:    LogConfig{Verbosity: 0},
	}
}

// Load reads the config at path. A missing file yields Default. Fields left
// empty in the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Storage.Path = expandPath(cfg.Storage.Path, filepath.Dir(path))
	cfg.Log.File = expandPath(cfg.Log.File, filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config missing")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects unknown backends and codecs.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "file":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage backend %q needs a path", c.Storage.Backend)
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Storage.Codec {
	case "json", "msgpack":
	default:
		return fmt.Errorf("unknown storage codec %q", c.Storage.Codec)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage key must not be empty")
	}
	return nil
}

// expandPath resolves ~ and paths relative to the config file's directory.
func expandPath(path, base string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Join(base, path)
}
