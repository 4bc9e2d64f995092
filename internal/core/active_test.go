package core

import (
	"bizstate/pkg/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveSelectionHealsStalePointer(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(map[string]string{domain.KeyActiveBusiness: `"biz_9"`})
	opts, _ := testOptions(t)
	active := LoadActive(ctx, backend, "biz_1", opts)
	businesses := []domain.BusinessProfile{{ID: "biz_1"}, {ID: "biz_2"}}

	id, err := active.Get(businesses)
	require.NoError(t, err)
	assert.Equal(t, domain.BusinessID("biz_1"), id)
	assert.Equal(t, domain.BusinessID("biz_9"), active.Stored())
	raw, _ := backend.raw(domain.KeyActiveBusiness)
	assert.Equal(t, `"biz_9"`, raw, "reads never rewrite the stored pointer")

	require.NoError(t, active.Set(ctx, "biz_2"))
	id, err = active.Get(businesses)
	require.NoError(t, err)
	assert.Equal(t, domain.BusinessID("biz_2"), id)
	raw, _ = backend.raw(domain.KeyActiveBusiness)
	assert.Equal(t, `"biz_2"`, raw)
}

func TestActiveSelectionEmpty(t *testing.T) {
	opts, _ := testOptions(t)
	active := LoadActive(context.Background(), newFakeBackend(nil), "biz_1", opts)
	_, err := active.Get(nil)
	require.ErrorIs(t, err, domain.ErrNoActiveEntity)
}

func TestActiveSelectionSetUnknownIsStored(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(nil)
	opts, _ := testOptions(t)
	active := LoadActive(ctx, backend, "", opts)
	require.NoError(t, active.Set(ctx, "biz_404"))
	assert.Equal(t, domain.BusinessID("biz_404"), active.Stored())
	id, err := active.Get([]domain.BusinessProfile{{ID: "biz_1"}})
	require.NoError(t, err)
	assert.Equal(t, domain.BusinessID("biz_1"), id)
}
