package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const DefaultConfigFileName = ".task.toml"

// FileConfig mirrors ~/.task.toml. Nil fields were not set by any file.
type FileConfig struct {
	DefaultShell *string `toml:"default_shell"`
	Model        *string `toml:"model"`
	SystemPrompt *string `toml:"system_prompt"`
	Verbose      *bool   `toml:"verbose"`
	Spinner      *bool   `toml:"spinner"`
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory failed: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigFileName), nil
}

// Load reads userPath first. When it sets at least one key it is used alone;
// otherwise the default file fills in.
func Load(userPath string) (FileConfig, error) {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = ""
	}
	return LoadFrom(userPath, defaultPath)
}

func LoadFrom(userPath string, defaultPath string) (FileConfig, error) {
	config := FileConfig{}

	if trimmed := strings.TrimSpace(userPath); trimmed != "" {
		if err := config.loadPath(trimmed); err != nil {
			return FileConfig{}, err
		}
		if config.IsPopulated() {
			return config, nil
		}
	}

	if trimmed := strings.TrimSpace(defaultPath); trimmed != "" {
		if err := config.loadPath(trimmed); err != nil {
			return FileConfig{}, err
		}
	}
	return config, nil
}

func (config *FileConfig) loadPath(path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file at %s: %w", path, err)
	}

	var fileConfig FileConfig
	if _, err := toml.Decode(string(contents), &fileConfig); err != nil {
		return fmt.Errorf("parse config file at %s: %w", path, err)
	}
	config.apply(fileConfig)
	return nil
}

// apply only fills keys that are still unset.
func (config *FileConfig) apply(other FileConfig) {
	if config.DefaultShell == nil {
		config.DefaultShell = other.DefaultShell
	}
	if config.Model == nil {
		config.Model = other.Model
	}
	if config.SystemPrompt == nil {
		config.SystemPrompt = other.SystemPrompt
	}
	if config.Verbose == nil {
		config.Verbose = other.Verbose
	}
	if config.Spinner == nil {
		config.Spinner = other.Spinner
	}
}

func (config FileConfig) IsPopulated() bool {
	return config.DefaultShell != nil ||
		config.Model != nil ||
		config.SystemPrompt != nil ||
		config.Verbose != nil ||
		config.Spinner != nil
}

func ResolveString(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return strings.TrimSpace(*value)
}

func ResolveBool(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
