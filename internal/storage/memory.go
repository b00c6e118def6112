package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps values for the life of the process
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	defer observe("memory", "get", time.Now(), nil)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	defer observe("memory", "set", time.Now(), nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	defer observe("memory", "delete", time.Now(), nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
