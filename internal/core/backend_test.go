package core

import (
	"bizstate/internal/durable"
	"context"
	"errors"
	"sort"
	"sync"
)

var errBackendDown = errors.New("backend unavailable")

// fakeBackend is an in-memory durable.Backend whose reads and writes can be made to fail.
type fakeBackend struct {
	mu      sync.Mutex
	values  map[string]string
	sets    int
	failGet bool
	failSet bool
}

func newFakeBackend(values map[string]string) *fakeBackend {
	b := &fakeBackend{values: make(map[string]string, len(values))}
	for k, v := range values {
		b.values[k] = v
	}
	return b
}

func (b *fakeBackend) Driver() durable.Driver { return "fake" }

func (b *fakeBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failGet {
		return "", false, errBackendDown
	}
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *fakeBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSet {
		return errBackendDown
	}
	b.sets++
	b.values[key] = value
	return nil
}

func (b *fakeBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
	return nil
}

func (b *fakeBackend) Keys(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *fakeBackend) Close() error { return nil }

func (b *fakeBackend) raw(key string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	return v, ok
}

func (b *fakeBackend) setFailures(get, set bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failGet, b.failSet = get, set
}
