// Package memory provides the in-memory StateStore used by default and in tests
package memory

import (
	"context"
	"sync"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// StateStore implements outbound.StateStore on a map
type StateStore struct {
	data  map[string][]byte
	mutex sync.RWMutex
}

// NewStateStore creates a new in-memory state store
func NewStateStore() *StateStore {
	return &StateStore{
		data: make(map[string][]byte),
	}
}

// Get retrieves a value
func (s *StateStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.data[key]
	if !exists {
		return nil, outbound.ErrStateNotFound
	}

	return append([]byte(nil), value...), nil
}

// Set stores a value
func (s *StateStore) Set(ctx context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes a key
func (s *StateStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}

// Keys returns the stored keys
func (s *StateStore) Keys() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	return keys
}

var _ outbound.StateStore = (*StateStore)(nil)
