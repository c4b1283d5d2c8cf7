package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "beatsprite.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/beatsprite"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
	home   string
	cwd    string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	home, _ := os.UserHomeDir()
	cwd, _ := os.Getwd()
	return newLoader(logger, home, cwd)
}

func newLoader(logger *slog.Logger, home, cwd string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, home: home, cwd: cwd}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/beatsprite/config.yaml)
// 3. Project config (beatsprite.yaml in the working directory)
// 4. The explicit file, if any; it must exist
func (l *Loader) Load(explicit string) (*Config, error) {
	config := DefaultConfig()
	config.BaseDir = l.cwd

	for _, path := range []string{l.UserConfigPath(), l.ProjectConfigPath()} {
		if path == "" {
			continue
		}
		err := config.apply(path)
		switch {
		case err == nil:
			l.logger.Debug("Loaded config", slog.String("path", path))
		case errors.Is(err, fs.ErrNotExist):
		default:
			l.logger.Warn("Failed to load config", slog.String("path", path), slog.String("error", err.Error()))
		}
	}

	if explicit != "" {
		if err := config.apply(explicit); err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", explicit))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// UserConfigPath returns the path to the user config file
func (l *Loader) UserConfigPath() string {
	if l.home == "" {
		return ""
	}
	return filepath.Join(l.home, UserConfigDir, UserConfigFile)
}

// ProjectConfigPath returns the path to the project config file
func (l *Loader) ProjectConfigPath() string {
	if l.cwd == "" {
		return ""
	}
	return filepath.Join(l.cwd, ProjectConfigFile)
}

// WatchPath returns the file whose edits should trigger a reload: the
// explicit file when given, else the project file.
func (l *Loader) WatchPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return l.ProjectConfigPath()
}
