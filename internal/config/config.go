// Package config provides configuration loading and management for semls.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete semls configuration.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Index     IndexConfig     `yaml:"index"`
	Watch     WatchConfig     `yaml:"watch"`
	Log       LogConfig       `yaml:"log"`
}

// WorkspaceConfig configures the indexed project root.
type WorkspaceConfig struct {
	// Root is the workspace root path (auto-detected from the LSP
	// initialize request, or the CLI's positional argument, if empty).
	Root string `yaml:"root"`
	// IgnoreFile names a gitignore-style file (relative to Root) whose
	// patterns are excluded from indexing and watching.
	IgnoreFile string `yaml:"ignoreFile"`
}

// IndexConfig configures the document indexing pipeline (pkg/indexer).
type IndexConfig struct {
	// Workers bounds the indexing worker pool. 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
	// Backend selects a pkg/parserbackend.Registry entry by name.
	Backend string `yaml:"backend"`
}

// WatchConfig configures internal/watch.
type WatchConfig struct {
	// Debounce is how long the watcher waits after the last filesystem
	// event before handing changed paths to the indexer.
	Debounce time.Duration `yaml:"debounce"`
}

// LogConfig configures log/slog output.
type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	// ProjectConfigFile is the project-level config file name.
	ProjectConfigFile = "semls.yaml"
	// UserConfigDir is the user-level config directory, under $HOME.
	UserConfigDir = ".config/semls"
	// UserConfigFile is the user-level config file name.
	UserConfigFile = "config.yaml"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			IgnoreFile: ".semlsignore",
		},
		Index: IndexConfig{
			Workers: 0,
			Backend: "reference",
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Index.Workers < 0 {
		return fmt.Errorf("index.workers must be >= 0")
	}
	if c.Index.Backend == "" {
		return fmt.Errorf("index.backend is required")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0")
	}
	return nil
}

// LoadFromFile loads a Config from a YAML file, starting from defaults so
// omitted fields keep their default value.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes c as YAML to path, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Merge overlays other onto c; non-zero fields in other take precedence.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Workspace.Root != "" {
		c.Workspace.Root = other.Workspace.Root
	}
	if other.Workspace.IgnoreFile != "" {
		c.Workspace.IgnoreFile = other.Workspace.IgnoreFile
	}
	if other.Index.Workers != 0 {
		c.Index.Workers = other.Index.Workers
	}
	if other.Index.Backend != "" {
		c.Index.Backend = other.Index.Backend
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
