package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const DotEnvFile = ".env"

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// SaveDotEnv sets key in the dotenv file at path, keeping the other entries.
func SaveDotEnv(path string, key string, value string) error {
	normalizedKey := strings.TrimSpace(key)
	if normalizedKey == "" {
		return fmt.Errorf("dotenv key is required")
	}

	values := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		existing, readError := godotenv.Read(path)
		if readError != nil {
			return fmt.Errorf("read %s: %w", path, readError)
		}
		values = existing
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	values[normalizedKey] = value
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("restrict %s permissions: %w", path, err)
	}
	return nil
}
