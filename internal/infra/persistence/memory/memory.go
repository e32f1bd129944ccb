// Package memory provides an in-process KeyValueStore used by tests and
// local runs without a Redis instance.
package memory

import (
	"context"
	"sync"

	"pulse/internal/domain/repository"
)

type store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty in-memory key-value store.
func New() repository.KeyValueStore {
	return &store{data: make(map[string][]byte)}
}

// Get retrieves the payload stored under key.
func (s *store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, repository.ErrKeyNotFound
	}

	cloned := make([]byte, len(value))
	copy(cloned, value)

	return cloned, nil
}

// Set stores the payload under key.
func (s *store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cloned := make([]byte, len(value))
	copy(cloned, value)
	s.data[key] = cloned

	return nil
}
