package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CredentialStore is the one durable piece of client state: the bearer
// token, kept in a single file so a session survives process restarts.
type CredentialStore struct {
	path string
}

// NewCredentialStore opens a credential store at path. An empty path picks
// the platform default, <user config dir>/medible/token.
func NewCredentialStore(path string) (*CredentialStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "medible", "token")
	}
	return &CredentialStore{path: path}, nil
}

// Load returns the stored token, or "" when none has been saved yet.
func (s *CredentialStore) Load() (string, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (s *CredentialStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *CredentialStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
