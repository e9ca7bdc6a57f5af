package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/andressep95/estate-admin/internal/repository"
)

var unsafeNamespaceChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store persisted as one JSON object per namespace in dir.
// The file is re-read on every call so edits made by other processes are
// picked up.
func NewStore(dir, namespace string) (repository.KeyValueStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	name := unsafeNamespaceChars.ReplaceAllString(namespace, "_")
	if name == "" {
		name = "default"
	}

	return &store{path: filepath.Join(dir, name+".json")}, nil
}

// Get returns the value stored under key
func (s *store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set stores value under key, overwriting any previous value
func (s *store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

// Remove deletes key; removing a missing key is not an error
func (s *store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

// Clear drops the whole namespace file
func (s *store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove store file: %w", err)
	}
	return nil
}

func (s *store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(data) == 0 {
		return make(map[string]string), nil
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode store file %s: %w", s.path, err)
	}
	return values, nil
}

func (s *store) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
