package memory

import (
	"context"
	"sync"

	"github.com/andressep95/estate-admin/internal/repository"
)

type store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates an in-process store. Nothing survives a restart.
func NewStore() repository.KeyValueStore {
	return &store{values: make(map[string]string)}
}

// Get returns the value stored under key
func (s *store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key, overwriting any previous value
func (s *store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Remove deletes key; removing a missing key is not an error
func (s *store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
