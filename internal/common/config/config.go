package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/obentoo/srcsync/internal/common/git"
	"gopkg.in/yaml.v3"
)

// Git client names accepted in git.client
const (
	GitClientExec  = git.ClientExec
	GitClientGoGit = git.ClientGoGit
)

var (
	ErrInvalidGitClient = errors.New("invalid git client: must be 'exec' or 'go-git'")
)

// Config represents the application configuration
type Config struct {
	Recipes string    `yaml:"recipes"` // Path to a TOML recipe file; empty uses the built-in recipe
	Git     GitConfig `yaml:"git"`
	Log     LogConfig `yaml:"log"`
}

// GitConfig selects the version-control client
type GitConfig struct {
	Client string `yaml:"client"` // "exec" or "go-git"
}

// LogConfig holds logging settings
type LogConfig struct {
	File bool `yaml:"file"` // Append to $XDG_STATE_HOME/srcsync/logs/srcsync.log
}

// Default returns the configuration written on first use
func Default() *Config {
	return &Config{
		Git: GitConfig{Client: GitClientExec},
	}
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/srcsync/config.yaml (XDG standard - priority)
// 2. ~/.srcsync/config.yaml (fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	// Check XDG_CONFIG_HOME first, fallback to ~/.config
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "srcsync", "config.yaml"),
		filepath.Join(home, ".srcsync", "config.yaml"),
	}, nil
}

// DefaultConfigPath returns the default config file path (XDG standard)
func DefaultConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// FindConfigPath returns the first existing config file path
// Returns the default path if no config file exists yet
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return paths[0], nil
}

// Load reads configuration from the first available config file
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path.
// A missing file is created with default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if saveErr := cfg.SaveTo(path); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// SaveTo writes configuration to a specific file path
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks field values
func (c *Config) Validate() error {
	switch c.Git.Client {
	case "", GitClientExec, GitClientGoGit:
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidGitClient, c.Git.Client)
	}
}

// GitClient returns the configured client name, defaulting to exec
func (c *Config) GitClient() string {
	if c.Git.Client == "" {
		return GitClientExec
	}
	return c.Git.Client
}

// RecipesPath returns the recipe file path with a leading ~ expanded.
// Empty means the built-in recipe is used.
func (c *Config) RecipesPath() (string, error) {
	return ExpandHome(c.Recipes)
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
