package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "myshop"
	configFileName = "config.json"
)

// UserConfig represents the user's local preferences stored in ~/.config/myshop/config.json
type UserConfig struct {
	// Mode selects the API deployment when MYSHOP_MODE is not set.
	Mode string `json:"mode,omitempty"`
	// LastPath is the last page rendered, reopened by a bare `myshop open`.
	LastPath string `json:"last_path,omitempty"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

func update(fn func(cfg *UserConfig)) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	fn(cfg)
	return Save(cfg)
}

// SetMode saves the selected API mode
func SetMode(mode string) error {
	return update(func(cfg *UserConfig) { cfg.Mode = mode })
}

// GetMode returns the selected API mode, or empty string if not set
func GetMode() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.Mode, nil
}

// SetLastPath records the last page rendered
func SetLastPath(path string) error {
	return update(func(cfg *UserConfig) { cfg.LastPath = path })
}

// GetLastPath returns the last page rendered, or empty string if none
func GetLastPath() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.LastPath, nil
}
