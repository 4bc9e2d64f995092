package core

import (
	"bizstate/internal/durable"
	"bizstate/pkg/domain"
	"context"
)

// ActiveSelection is the persisted pointer to the business the workspace is operating on.
type ActiveSelection struct {
	slice *Slice[domain.BusinessID]
}

// LoadActive loads the active pointer stored under domain.KeyActiveBusiness, falling
// back to fallback.
func LoadActive(ctx context.Context, backend durable.Backend, fallback domain.BusinessID, opts Options) *ActiveSelection {
	return &ActiveSelection{slice: LoadSlice(ctx, backend, domain.KeyActiveBusiness, fallback, opts)}
}

// Get resolves the active business against businesses. A stored id that no longer names
// a business resolves to the first business; the stored pointer is left as is. An empty
// collection returns domain.ErrNoActiveEntity.
func (a *ActiveSelection) Get(businesses []domain.BusinessProfile) (domain.BusinessID, error) {
	if len(businesses) == 0 {
		return "", domain.ErrNoActiveEntity
	}
	stored := a.slice.Read()
	for _, b := range businesses {
		if b.ID == stored {
			return stored, nil
		}
	}
	return businesses[0].ID, nil
}

// Set stores id unconditionally.
func (a *ActiveSelection) Set(ctx context.Context, id domain.BusinessID) error {
	return a.slice.Write(ctx, id)
}

// Stored returns the raw stored pointer, which may be stale.
func (a *ActiveSelection) Stored() domain.BusinessID { return a.slice.Read() }
