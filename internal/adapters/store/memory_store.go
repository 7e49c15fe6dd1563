package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/inkatlas/tattoo-directory/internal/domain/providers"
	apperrors "github.com/inkatlas/tattoo-directory/pkg/errors"
)

// MemoryStore is an in-process KVStore used in tests and local development.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

var _ providers.KVStore = (*MemoryStore)(nil)

// Get retrieves the value stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("key not found: %s", key))
	}
	return value, nil
}

// Set stores value under key, overwriting any previous value
func (s *MemoryStore) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Delete removes the value stored under key
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Len reports the number of stored keys, for tests
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
