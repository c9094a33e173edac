package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

var _ core.KVStore = (*InMemoryStore)(nil)

// InMemoryStore is an in-process core.KVStore useful for tests, examples and
// ephemeral sessions. Values are copied on Put and Get so callers cannot
// mutate stored buffers.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewInMemoryStore returns an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[string][]byte)}
}

// Get returns a copy of the stored value or core.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Put stores (or overwrites) the value for key.
func (s *InMemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.docs[key] = cp
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}

// Keys returns the stored keys in lexical order.
func (s *InMemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.docs))
	for k := range s.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
