// Package memory implements an in-memory durable backend for tests and ephemeral sessions.
package memory

import (
	"bizstate/internal/durable/core"
	"context"
	"sort"
	"sync"
)

// Store implements core.Backend backed by process memory.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// New returns an empty in-memory backend.
func New() *Store { return &Store{values: make(map[string]string)} }

// NewWithValues returns a backend pre-populated with values, which is copied.
func NewWithValues(values map[string]string) *Store {
	s := New()
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Driver returns the backend identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, core.ErrClosed
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Set overwrites the value stored under key.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrClosed
	}
	s.values[key] = value
	return nil
}

// Delete removes key if present.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrClosed
	}
	delete(s.values, key)
	return nil
}

// Keys lists stored keys in lexical order.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, core.ErrClosed
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close marks the store unusable; later calls return core.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
