package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Loader resolves a Config from layered sources: defaults, then a
// user-level file, then a project-level file, with each layer overriding
// the previous one (spec.md's ambient stack carries the teacher's own
// config.Loader shape unchanged: NewLoader(*slog.Logger) defaulting to
// slog.Default(), Load() walking the same two tiers).
type Loader struct {
	logger *slog.Logger
}

// NewLoader builds a Loader, defaulting logger to slog.Default() if nil.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load resolves: defaults -> user config -> project config -> workspaceRoot
// override (the CLI/LSP-supplied root always wins, since it names the
// workspace the caller actually asked to serve).
func (l *Loader) Load(workspaceRoot string) (*Config, error) {
	cfg := DefaultConfig()

	userPath := l.userConfigPath()
	if userPath != "" {
		if userCfg, err := LoadFromFile(userPath); err == nil {
			l.logger.Debug("loaded user config", slog.String("path", userPath))
			cfg.Merge(userCfg)
		} else if !os.IsNotExist(err) {
			l.logger.Warn("failed to load user config", slog.String("path", userPath), slog.String("error", err.Error()))
		}
	}

	projectPath := l.findProjectConfig(workspaceRoot)
	if projectPath != "" {
		if projectCfg, err := LoadFromFile(projectPath); err == nil {
			l.logger.Debug("loaded project config", slog.String("path", projectPath))
			cfg.Merge(projectCfg)
		} else {
			l.logger.Warn("failed to load project config", slog.String("path", projectPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("no project config found")
	}

	if workspaceRoot != "" {
		cfg.Workspace.Root = workspaceRoot
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig walks from workspaceRoot (or the working directory, if
// empty) up to the filesystem root looking for ProjectConfigFile.
func (l *Loader) findProjectConfig(workspaceRoot string) string {
	dir := workspaceRoot
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}

	for {
		candidate := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
