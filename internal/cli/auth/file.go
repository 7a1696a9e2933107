package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName   = "myshop"
	sessionFileName = "session.json"
)

// FileBackend stores the session document in ~/.config/myshop/session.json.
// It is the fallback for hosts without a usable keychain.
type FileBackend struct {
	Path string
}

// NewFileBackend returns a file backend at path, or at the default location
// when path is empty.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		defaultPath, err := GetSessionPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return &FileBackend{Path: path}, nil
}

// GetSessionPath returns the default path of the session file
func GetSessionPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, sessionFileName), nil
}

func (f *FileBackend) Get() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return data, nil
}

// Set writes to a temp file in the same directory and renames it over the
// target, so a crash never leaves a half-written session behind.
func (f *FileBackend) Set(data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, sessionFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set session file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tmpPath, f.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (f *FileBackend) Delete() error {
	if err := os.Remove(f.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
