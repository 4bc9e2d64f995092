package core

import (
	"bizstate/internal/durable"
	"bizstate/pkg/domain"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Fallback reasons reported on bizstate_slice_fallback_total.
const (
	reasonAbsent    = "absent"
	reasonReadError = "read_error"
	reasonParse     = "parse"
)

// Slice is one named value cached in memory and written through to a single backend key
// on every change. Reads never touch the backend.
type Slice[T any] struct {
	mu      sync.RWMutex
	backend durable.Backend
	key     string
	value   T
	log     logrus.FieldLogger
	metrics *durable.Metrics
}

// LoadSlice reads key from backend once. An absent key, a backend read error or a
// payload that does not decode into T all yield fallback; none of them is an error.
func LoadSlice[T any](ctx context.Context, backend durable.Backend, key string, fallback T, opts Options) *Slice[T] {
	s := &Slice[T]{
		backend: backend,
		key:     key,
		log:     opts.logger().WithFields(logrus.Fields{"key": key, "driver": backend.Driver()}),
		metrics: opts.Metrics,
	}
	s.value = s.load(ctx, fallback)
	return s
}

func (s *Slice[T]) load(ctx context.Context, fallback T) T {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.log.WithError(err).Warn("durable read failed, using fallback")
		s.metrics.Fallback(s.key, reasonReadError)
		return fallback
	}
	if !ok {
		s.log.Debug("durable key absent, using fallback")
		s.metrics.Fallback(s.key, reasonAbsent)
		return fallback
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.log.WithError(err).Warn("durable payload unparsable, using fallback")
		s.metrics.Fallback(s.key, reasonParse)
		return fallback
	}
	return v
}

// Key returns the backend key the slice persists to.
func (s *Slice[T]) Key() string { return s.key }

// Read returns the cached value.
func (s *Slice[T]) Read() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Write replaces the cached value and persists it. On failure the new value stays cached
// and the returned error wraps domain.ErrPersist.
func (s *Slice[T]) Write(ctx context.Context, next T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(ctx, next)
}

// Update applies fn to the cached value and writes the result.
func (s *Slice[T]) Update(ctx context.Context, fn func(T) T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(ctx, fn(s.value))
}

func (s *Slice[T]) writeLocked(ctx context.Context, next T) error {
	s.value = next
	payload, err := json.Marshal(next)
	if err != nil {
		return s.failed(fmt.Errorf("%w: encode %s: %v", domain.ErrPersist, s.key, err))
	}
	if err := s.backend.Set(ctx, s.key, string(payload)); err != nil {
		return s.failed(fmt.Errorf("%w: store %s: %w", domain.ErrPersist, s.key, err))
	}
	return nil
}

func (s *Slice[T]) failed(err error) error {
	s.log.WithError(err).Error("durable write failed; in-memory value kept")
	s.metrics.WriteFailure(s.key)
	return err
}
