package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in
// ~/.config/reftab/config.yml. It points tooling run from outside a
// repository at a default one.
type GlobalConfig struct {
	DefaultRoot string `yaml:"default_root,omitempty"`

	// Verify supplies link checker settings for repositories that do
	// not set their own. Repository config wins.
	Verify VerifyConfig `yaml:"verify,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "reftab"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/reftab/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.DefaultRoot != "" {
		cfg.DefaultRoot = ExpandTilde(cfg.DefaultRoot)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetDefaultRoot returns the default repository root from global config.
func GetDefaultRoot() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.DefaultRoot
}

// ExpandTilde expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}

// ErrDefaultRootNotConfigured is returned when default_root is not set.
var ErrDefaultRootNotConfigured = errors.New("default_root not configured")

// ErrDefaultRootNotExist is returned when the configured default_root
// doesn't exist.
var ErrDefaultRootNotExist = errors.New("default_root does not exist")

// ValidateDefaultRoot returns the default root from global config after
// validation. Returns an error if not configured or if the path doesn't
// exist.
func ValidateDefaultRoot() (string, error) {
	path := GetDefaultRoot()
	if path == "" {
		return "", ErrDefaultRootNotConfigured
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrDefaultRootNotExist, path)
	}
	return path, nil
}

// HelpfulConfigMessage returns a pointer for users running outside a
// repository.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No reftab repository found.

Run from inside a repository, set REFTAB_ROOT, or create %s:
  mkdir -p %s
  echo 'default_root: /path/to/your/repository' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
