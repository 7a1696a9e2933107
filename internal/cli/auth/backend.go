package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	service    = "myshop-cli"
	sessionKey = "session"
)

// Backend is the storage medium for the session document.
// Get returns ErrNotFound when nothing is stored.
type Backend interface {
	Get() ([]byte, error)
	Set(data []byte) error
	Delete() error
}

// KeyringBackend keeps the session in the OS keychain/credential manager.
type KeyringBackend struct {
	// Account distinguishes API deployments sharing one keychain.
	Account string
}

// NewKeyringBackend returns a keyring backend scoped to the given API base URL.
func NewKeyringBackend(baseURL string) *KeyringBackend {
	return &KeyringBackend{Account: getKeyringKey(baseURL)}
}

// getKeyringKey returns a unique key for storing the session per API deployment
func getKeyringKey(baseURL string) string {
	if baseURL == "" {
		return sessionKey
	}
	return fmt.Sprintf("%s-%s", sessionKey, baseURL)
}

func (k *KeyringBackend) Get() ([]byte, error) {
	secret, err := keyring.Get(service, k.Account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("keyring get: %w", err)
	}
	return []byte(secret), nil
}

func (k *KeyringBackend) Set(data []byte) error {
	if err := keyring.Set(service, k.Account, string(data)); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

func (k *KeyringBackend) Delete() error {
	if err := keyring.Delete(service, k.Account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}

// MemoryBackend keeps the session in process memory. Used by tests.
type MemoryBackend struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Get() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryBackend) Set(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = nil
	return nil
}
