// Copyright (c) 2025 Wayfare
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for wayfare.
// This module manages all interactions with the OS keychain/credential store,
// providing a unified interface for storing and retrieving sensitive data such as
// session tokens and the persisted user snapshot.
//
// The package supports multiple operating systems including macOS Keychain and
// Windows Credential Manager, with thread-safe operations and proper error handling.
// The three session slots (access token, refresh token, user snapshot) are written
// only by the session store; other components may read them during bootstrap but
// never mutate them directly.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "wayfare"

// Keys used for storing session secrets in the OS keychain.
const (
	KeyAccessToken  = "session_access_token"
	KeyRefreshToken = "session_refresh_token"
	KeyUserSnapshot = "session_user"
)

// ErrNotFound is returned when a requested slot is absent from the keychain.
var ErrNotFound = errors.New("keychain: key not found")

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	// Try native security backend first on macOS
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
		// Fall through to keyring library if security command fails
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}

	return &Manager{
		ring: ring,
	}, nil
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	// If already initialized successfully, return it
	if globalManager != nil {
		return globalManager, nil
	}

	// If previous initialization failed, retry
	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}

	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends where available,
// falling back to the encrypted file backend elsewhere so Linux users are not
// locked out of the CLI.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// Try macOS Keychain first, then pass (password store) as fallback.
		// Pass requires the 'pass' utility installed: brew install pass
		allowedBackends = []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.PassBackend,
		}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		}
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
	}

	// Hint prefixes where supported to minimize namespace collisions
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}

	return ring, nil
}

// set writes one slot through whichever backend is active.
func (m *Manager) set(key, value string) error {
	if m.backend != nil {
		return m.backend.Set(key, value)
	}
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value)})
}

// get reads one slot; absence maps to ErrNotFound.
func (m *Manager) get(key string) (string, error) {
	if m.backend != nil {
		v, err := m.backend.Get(key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", ErrNotFound
			}
			return "", err
		}
		return v, nil
	}
	it, err := m.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(it.Data), nil
}

// remove deletes one slot, tolerating absence.
func (m *Manager) remove(key string) error {
	if m.backend != nil {
		_ = m.backend.Delete(key)
		return nil
	}
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// SaveTokens stores the access and refresh tokens in the OS keychain.
// Empty values are skipped so partial rotations can update a single slot.
// This method is thread-safe.
func (m *Manager) SaveTokens(accessToken, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if accessToken != "" {
		if err := m.set(KeyAccessToken, accessToken); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		if err := m.set(KeyRefreshToken, refreshToken); err != nil {
			return err
		}
	}
	return nil
}

// LoadTokens retrieves the stored token pair. Absent slots yield empty strings
// rather than errors; callers decide whether an empty pair means anonymous.
// This method is thread-safe.
func (m *Manager) LoadTokens() (accessToken, refreshToken string, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	access, err := m.get(KeyAccessToken)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", "", err
	}
	refresh, err := m.get(KeyRefreshToken)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", "", err
	}
	return access, refresh, nil
}

// SaveUser stores the serialized user snapshot in the keychain.
// This method is thread-safe.
func (m *Manager) SaveUser(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(KeyUserSnapshot, string(data))
}

// LoadUser retrieves the serialized user snapshot from the keychain.
// A missing snapshot yields (nil, nil).
// This method is thread-safe.
func (m *Manager) LoadUser() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := m.get(KeyUserSnapshot)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(data), nil
}

// Clear removes all three session slots from the keychain as a batch.
// This method is thread-safe.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUserSnapshot} {
		if err := m.remove(key); err != nil {
			return err
		}
	}
	return nil
}
