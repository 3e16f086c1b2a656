package memory

import (
	"context"
	"sync"

	"github.com/vietvuong1994/SwiftMessenger/internal/kv"
)

// Store is an in-process kv.Store used by tests and local development.
type Store struct {
	mu   sync.RWMutex
	docs map[string]kv.Document
}

func New() *Store {
	return &Store{docs: make(map[string]kv.Document)}
}

func (s *Store) Get(_ context.Context, key string) (kv.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return kv.Document{}, kv.ErrNotFound
	}

	copied := make([]byte, len(doc.Data))
	copy(copied, doc.Data)
	return kv.Document{Data: copied, Version: doc.Version}, nil
}

func (s *Store) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = kv.Document{Data: cloneBytes(data), Version: s.docs[key].Version + 1}
	return nil
}

func (s *Store) PutVersion(_ context.Context, key string, data []byte, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs[key].Version != expected {
		return kv.ErrConflict
	}

	s.docs[key] = kv.Document{Data: cloneBytes(data), Version: expected + 1}
	return nil
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.docs[key]
	return ok, nil
}

func cloneBytes(data []byte) []byte {
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied
}
