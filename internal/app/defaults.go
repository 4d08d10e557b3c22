package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - NETBACKUP_CONFIG_PATH: config file location (default: ~/.config/netbackup.toml)
//   - NETBACKUP_HOME: base directory for netbackup data (default: ~/.local/share/netbackup)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking NETBACKUP_CONFIG_PATH first,
// then falling back to ~/.config/netbackup.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("NETBACKUP_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "netbackup.toml"), nil
}

// getBaseDir returns the data directory, checking NETBACKUP_HOME first,
// then falling back to the XDG default ~/.local/share/netbackup.
func getBaseDir() (string, error) {
	if path := os.Getenv("NETBACKUP_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "netbackup"), nil
}
