package core

import (
	"bizstate/internal/durable"
	"bizstate/pkg/domain"
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// EntityStore is an identifier-keyed collection over a Slice. Every mutating call writes
// the whole array through before it returns. Values handed out are copies.
type EntityStore[T domain.Entity] struct {
	mu     sync.Mutex
	entity domain.EntityType
	order  domain.Ordering
	slice  *Slice[[]T]
	log    logrus.FieldLogger
}

// LoadStore loads collection c from backend, using fallback when the stored value is
// absent or unreadable. Duplicate identifiers in the stored array are dropped, keeping
// the first occurrence; the repaired array is written on the next mutation. Entities
// that fail their own Validate are kept as stored and logged.
func LoadStore[T domain.Entity](ctx context.Context, backend durable.Backend, c domain.Collection, fallback []T, opts Options) *EntityStore[T] {
	st := &EntityStore[T]{
		entity: c.Entity,
		order:  c.Order,
		slice:  LoadSlice(ctx, backend, c.Key, fallback, opts),
		log:    opts.logger().WithFields(logrus.Fields{"entity": c.Entity, "key": c.Key}),
	}
	items := st.slice.value
	seen := make(map[string]struct{}, len(items))
	kept := items[:0:0]
	for _, v := range items {
		id := v.EntityID()
		if _, dup := seen[id]; dup {
			st.log.WithField("id", id).Warn("duplicate identifier in stored collection, keeping first")
			continue
		}
		seen[id] = struct{}{}
		if vv, ok := any(v).(interface{ Validate() error }); ok {
			if err := vv.Validate(); err != nil {
				st.log.WithError(err).WithField("id", id).Warn("stored entity fails validation, edits are rejected until it is replaced")
			}
		}
		kept = append(kept, v)
	}
	if len(kept) != len(items) {
		st.slice.value = kept
	}
	return st
}

// Entity returns the entity type held by the store.
func (st *EntityStore[T]) Entity() domain.EntityType { return st.entity }

// Key returns the backend key the store persists to.
func (st *EntityStore[T]) Key() string { return st.slice.Key() }

// List returns a copy of every entity in stored order.
func (st *EntityStore[T]) List() []T {
	items := st.slice.Read()
	out := make([]T, len(items))
	for i, v := range items {
		out[i] = cloneEntity(v)
	}
	return out
}

// Len returns the number of entities.
func (st *EntityStore[T]) Len() int { return len(st.slice.Read()) }

// Filter returns copies of the entities matching pred, in stored order.
func (st *EntityStore[T]) Filter(pred func(T) bool) []T {
	var out []T
	for _, v := range st.slice.Read() {
		if pred(v) {
			out = append(out, cloneEntity(v))
		}
	}
	return out
}

// Find returns the entity with id.
func (st *EntityStore[T]) Find(id string) (T, bool) {
	items := st.slice.Read()
	if i := indexOf(items, id); i >= 0 {
		return cloneEntity(items[i]), true
	}
	var zero T
	return zero, false
}

// Get is Find returning domain.ErrNotFound for a missing id.
func (st *EntityStore[T]) Get(id string) (T, error) {
	v, ok := st.Find(id)
	if !ok {
		return v, domain.ErrNotFound{Entity: st.entity, ID: id}
	}
	return v, nil
}

// Upsert replaces the entity with the same identifier in place, or inserts it according
// to the store's ordering policy. It always writes through.
func (st *EntityStore[T]) Upsert(ctx context.Context, v T) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.upsertLocked(ctx, v)
}

func (st *EntityStore[T]) upsertLocked(ctx context.Context, v T) error {
	if err := st.check(v); err != nil {
		return err
	}
	v = cloneEntity(v)
	id := v.EntityID()
	return st.slice.Update(ctx, func(items []T) []T {
		next := make([]T, 0, len(items)+1)
		if i := indexOf(items, id); i >= 0 {
			next = append(next, items...)
			next[i] = v
			return next
		}
		if st.order == domain.Prepend {
			return append(append(next, v), items...)
		}
		return append(append(next, items...), v)
	})
}

func (st *EntityStore[T]) check(v T) error {
	if v.EntityID() == "" {
		return domain.MissingIDError{Entity: st.entity}
	}
	if err := structValidator.Struct(v); err != nil {
		return fmt.Errorf("validate %s %s: %w", st.entity, v.EntityID(), err)
	}
	if vv, ok := any(v).(interface{ Validate() error }); ok {
		if err := vv.Validate(); err != nil {
			return fmt.Errorf("validate %s %s: %w", st.entity, v.EntityID(), err)
		}
	}
	return nil
}

// Remove deletes the entity with id. A missing id leaves the collection unchanged but
// is still written through.
func (st *EntityStore[T]) Remove(ctx context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.slice.Update(ctx, func(items []T) []T {
		next := make([]T, 0, len(items))
		for _, v := range items {
			if v.EntityID() != id {
				next = append(next, v)
			}
		}
		return next
	})
}

// Update applies mutate to a copy of the entity with id and upserts the result while
// holding the store lock, so concurrent read-modify-write cycles cannot lose changes.
func (st *EntityStore[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	var zero T
	items := st.slice.Read()
	i := indexOf(items, id)
	if i < 0 {
		return zero, domain.ErrNotFound{Entity: st.entity, ID: id}
	}
	v := cloneEntity(items[i])
	if err := mutate(&v); err != nil {
		return zero, err
	}
	if v.EntityID() != id {
		return zero, fmt.Errorf("update %s %s: identifier changed to %q", st.entity, id, v.EntityID())
	}
	if err := st.upsertLocked(ctx, v); err != nil {
		return zero, err
	}
	return cloneEntity(v), nil
}

// ReplaceAll writes items as the whole collection after validating each entity and
// identifier uniqueness.
func (st *EntityStore[T]) ReplaceAll(ctx context.Context, items []T) error {
	seen := make(map[string]struct{}, len(items))
	next := make([]T, 0, len(items))
	for _, v := range items {
		if err := st.check(v); err != nil {
			return err
		}
		if _, dup := seen[v.EntityID()]; dup {
			return domain.DuplicateIDError{Entity: st.entity, ID: v.EntityID()}
		}
		seen[v.EntityID()] = struct{}{}
		next = append(next, cloneEntity(v))
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.slice.Write(ctx, next)
}

// Map rewrites every entity with fn in a single write. fn must keep identifiers.
func (st *EntityStore[T]) Map(ctx context.Context, fn func(T) T) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.slice.Update(ctx, func(items []T) []T {
		next := make([]T, len(items))
		for i, v := range items {
			next[i] = fn(cloneEntity(v))
		}
		return next
	})
}

// Clear empties the collection.
func (st *EntityStore[T]) Clear(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.slice.Write(ctx, []T{})
}

func indexOf[T domain.Entity](items []T, id string) int {
	for i, v := range items {
		if v.EntityID() == id {
			return i
		}
	}
	return -1
}

func cloneEntity[T any](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}
	return v
}
