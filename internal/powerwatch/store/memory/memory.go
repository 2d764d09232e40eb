package memory

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store"
)

// Store is an in-memory KV.  It is intended for tests and for running the
// bot without a database (REDIS_ADDRESS=memory://); nothing survives a
// restart, so every start looks like a first run.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
	err  error
}

func New() *Store {
	return &Store{
		data: make(map[string]string),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return "", s.err
	}
	v, ok := s.data[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.data[key] = value
	return nil
}

func (s *Store) Close() error { return nil }

// FailWith makes every subsequent Get and Set return err, simulating an
// unreachable backend.  Pass nil to recover.  Test-only helper.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Snapshot returns a copy of all stored pairs.  Test-only helper.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}
