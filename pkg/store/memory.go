package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store, used in tests and when no database path
// is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]string)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.docs[key]
	return content, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = text
	return nil
}
