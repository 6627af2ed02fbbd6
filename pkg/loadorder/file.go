package loadorder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a file-based load-order store for CLI usage.
// Each profile's order is stored as one JSON file in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/modstack/profiles/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "modstack", "profiles")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(profileID string) string {
	return filepath.Join(s.baseDir, profileID+".json")
}

// Get retrieves a profile's load order. Returns nil, nil when the profile
// has no persisted order yet.
func (s *FileStore) Get(ctx context.Context, profileID string) (LoadOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(profileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read load order: %w", err)
	}

	var order LoadOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("parse load order: %w", err)
	}
	return order, nil
}

// Set stores a profile's load order, replacing any previous one.
// The file is written to a temp path and renamed so a crash never leaves a
// half-written order behind.
func (s *FileStore) Set(ctx context.Context, profileID string, order LoadOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		return fmt.Errorf("encode load order: %w", err)
	}

	path := s.path(profileID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write load order: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace load order: %w", err)
	}
	return nil
}

// Delete removes a profile's load order. Deleting an absent profile is not
// an error.
func (s *FileStore) Delete(ctx context.Context, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(profileID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete load order: %w", err)
	}
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
