package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveEntity is returned when an active business is requested but the business
	// collection is empty. Callers must surface it instead of rendering without a business.
	ErrNoActiveEntity = errors.New("no active business: business collection is empty")
	// ErrMissingID is returned when an entity without an identifier is upserted.
	ErrMissingID = errors.New("entity identifier is required")
	// ErrDuplicateID is returned when a collection would contain the same identifier twice.
	ErrDuplicateID = errors.New("duplicate entity identifier")
	// ErrPersist wraps failures to serialize or store a value durably. The in-memory value
	// has already been replaced when it is returned.
	ErrPersist = errors.New("durable write failed")
)

// ErrNotFound is returned when a referenced entity does not exist in its collection.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// DuplicateIDError reports which identifier collided in which collection.
type DuplicateIDError struct {
	Entity EntityType
	ID     string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrDuplicateID, e.Entity, e.ID)
}

// Unwrap lets errors.Is match ErrDuplicateID.
func (e DuplicateIDError) Unwrap() error { return ErrDuplicateID }

// MissingIDError reports the collection that contained an entity without an identifier.
type MissingIDError struct {
	Entity EntityType
}

func (e MissingIDError) Error() string {
	return fmt.Sprintf("%s: %s", e.Entity, ErrMissingID)
}

// Unwrap lets errors.Is match ErrMissingID.
func (e MissingIDError) Unwrap() error { return ErrMissingID }
