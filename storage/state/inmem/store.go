package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/skillforge/gateway/storage/state"
)

type entry struct {
	value    []byte
	deadline time.Time // zero means no expiry
}

// Store is an in-memory state store for DEV and tests.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	NowFunc func() time.Time // mockable
}

var _ state.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
		NowFunc: time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, state.ErrNotFound
	}
	if !e.deadline.IsZero() && !s.NowFunc().Before(e.deadline) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, state.ErrNotFound
	}
	val := make([]byte, len(e.value))
	copy(val, e.value)
	return val, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.deadline = s.NowFunc().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
