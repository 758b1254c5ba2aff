package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	pacwrapConfigName = "pacwrap"
	pacwrapConfigType = "yml"

	PacwrapConfigDirEnv = "PACWRAP_CONFIG_DIR"
)

// ConfigDir returns pacwrap's base configuration directory: the
// PACWRAP_CONFIG_DIR override if set, else ~/.config/pacwrap (Linux
// only, per spec.md being a Linux-specific tool).
func ConfigDir() (string, error) {
	if dir := os.Getenv(PacwrapConfigDirEnv); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to retrieve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pacwrap"), nil
}

func createConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// ConfigFilePath is the absolute path to pacwrap.yml.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%s.%s", pacwrapConfigName, pacwrapConfigType)), nil
}

// RepositoriesConfigPath is the absolute path to repositories.conf
// (spec.md §6's on-disk layout); repository-definition parsing itself
// belongs to the alpm boundary, not this package.
func RepositoriesConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "repositories.conf"), nil
}
