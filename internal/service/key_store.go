package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// keyFile is the on-disk layout of the key store.
type keyFile struct {
	APIKey string `yaml:"api_key"`
}

// KeyStore persists a user-supplied GitHub API key in a YAML file.
type KeyStore struct {
	filePath string
	mu       sync.RWMutex
	logger   Logger
}

// NewKeyStore creates a key store backed by filePath.
func NewKeyStore(filePath string, logger Logger) *KeyStore {
	return &KeyStore{
		filePath: filePath,
		logger:   logger,
	}
}

// Path returns the backing file path.
func (s *KeyStore) Path() string {
	return s.filePath
}

// Load returns the saved key, or "" when none has been saved.
func (s *KeyStore) Load() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key file: %w", err)
	}

	var kf keyFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return "", fmt.Errorf("failed to parse key file %s: %w", s.filePath, err)
	}
	return kf.APIKey, nil
}

// Save writes key to the store, replacing any previous key.
func (s *KeyStore) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(keyFile{APIKey: key})
	if err != nil {
		return fmt.Errorf("failed to marshal key file: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Write to a temporary file first, then rename into place.
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.logger.Printf("Key store: saved API key to %s", s.filePath)
	return nil
}

// Clear removes the saved key.
func (s *KeyStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove key file: %w", err)
	}

	s.logger.Printf("Key store: cleared %s", s.filePath)
	return nil
}
