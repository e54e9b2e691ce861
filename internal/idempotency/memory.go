package idempotency

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
)

// MemoryStore is the in-process Store, used in tests and as a defensive
// cache in front of the database-backed store.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (s *MemoryStore) Seen(_ context.Context, key Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[key.String()]
	return ok, nil
}

func (s *MemoryStore) Mark(_ context.Context, key Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key.String()]; ok {
		return false, nil
	}
	s.seen[key.String()] = struct{}{}
	return true, nil
}

// WithTx returns the store unchanged; the map has no transaction to join.
func (s *MemoryStore) WithTx(_ pgx.Tx) Store {
	return s
}
