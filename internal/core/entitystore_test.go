package core

import (
	"bizstate/pkg/domain"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskStore(t *testing.T, backend *fakeBackend, fallback ...domain.Task) *EntityStore[domain.Task] {
	t.Helper()
	opts, _ := testOptions(t)
	return LoadStore(context.Background(), backend, collection(domain.EntityTask), fallback, opts)
}

func ids[T domain.Entity](items []T) []string {
	out := make([]string, len(items))
	for i, v := range items {
		out[i] = v.EntityID()
	}
	return out
}

func TestEntityStoreUpsertAppendsAndReplaces(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(nil)
	st := taskStore(t, backend)

	require.NoError(t, st.Upsert(ctx, domain.Task{ID: "tsk_a", Title: "first"}))
	require.NoError(t, st.Upsert(ctx, domain.Task{ID: "tsk_b", Title: "second"}))
	require.NoError(t, st.Upsert(ctx, domain.Task{ID: "tsk_a", Title: "first, edited"}))

	assert.Equal(t, []string{"tsk_a", "tsk_b"}, ids(st.List()))
	got, err := st.Get("tsk_a")
	require.NoError(t, err)
	assert.Equal(t, "first, edited", got.Title)

	reloaded := taskStore(t, backend)
	assert.Equal(t, st.List(), reloaded.List())
}

func TestEntityStoreUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := taskStore(t, newFakeBackend(nil))
	task := domain.Task{ID: "tsk_a", Title: "same"}
	require.NoError(t, st.Upsert(ctx, task))
	before := st.List()
	require.NoError(t, st.Upsert(ctx, task))
	assert.Equal(t, before, st.List())
}

func TestEntityStorePrependsNewestFirst(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions(t)
	st := LoadStore(ctx, newFakeBackend(nil), collection(domain.EntityNotification), []domain.Notification{}, opts)
	for _, id := range []domain.NotificationID{"ntf_1", "ntf_2", "ntf_3"} {
		require.NoError(t, st.Upsert(ctx, domain.Notification{ID: id, Kind: domain.NotificationInfo}))
	}
	assert.Equal(t, []string{"ntf_3", "ntf_2", "ntf_1"}, ids(st.List()))

	// an update keeps the position
	require.NoError(t, st.Upsert(ctx, domain.Notification{ID: "ntf_1", Kind: domain.NotificationInfo, Read: true}))
	assert.Equal(t, []string{"ntf_3", "ntf_2", "ntf_1"}, ids(st.List()))
}

func TestEntityStoreRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(nil)
	st := taskStore(t, backend)

	err := st.Upsert(ctx, domain.Task{Title: "no id"})
	require.ErrorIs(t, err, domain.ErrMissingID)
	var missing domain.MissingIDError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, domain.EntityTask, missing.Entity)
	assert.Zero(t, st.Len())
	assert.Zero(t, backend.sets)

	opts, _ := testOptions(t)
	notes := LoadStore[domain.Notification](ctx, backend, collection(domain.EntityNotification), nil, opts)
	require.Error(t, notes.Upsert(ctx, domain.Notification{ID: "ntf_1", Kind: "loud"}))
	assert.Zero(t, notes.Len())

	customers := LoadStore[domain.Customer](ctx, backend, collection(domain.EntityCustomer), nil, opts)
	require.Error(t, customers.Upsert(ctx, domain.Customer{ID: "cus_1", Email: "not-an-email"}))
}

func TestEntityStoreRejectsDuplicateNestedIDs(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions(t)
	st := LoadStore[domain.BusinessProfile](ctx, newFakeBackend(nil), collection(domain.EntityBusiness), nil, opts)
	b := domain.BusinessProfile{ID: "biz_1", Products: []domain.Product{{ID: "prd_1"}, {ID: "prd_1"}}}
	err := st.Upsert(ctx, b)
	require.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.Zero(t, st.Len())
}

func TestEntityStoreRemove(t *testing.T) {
	ctx := context.Background()
	st := taskStore(t, newFakeBackend(nil), domain.Task{ID: "tsk_a"}, domain.Task{ID: "tsk_b"})
	require.NoError(t, st.Remove(ctx, "tsk_missing"))
	assert.Equal(t, []string{"tsk_a", "tsk_b"}, ids(st.List()))
	require.NoError(t, st.Remove(ctx, "tsk_a"))
	assert.Equal(t, []string{"tsk_b"}, ids(st.List()))
	_, ok := st.Find("tsk_a")
	assert.False(t, ok)
}

func TestEntityStoreDedupesOnLoad(t *testing.T) {
	backend := newFakeBackend(map[string]string{
		domain.KeyTasks: `[{"id":"tsk_a","title":"one"},{"id":"tsk_b","title":"two"},{"id":"tsk_a","title":"three"}]`,
	})
	opts, hook := testOptions(t)
	st := LoadStore[domain.Task](context.Background(), backend, collection(domain.EntityTask), nil, opts)
	assert.Equal(t, []string{"tsk_a", "tsk_b"}, ids(st.List()))
	got, _ := st.Find("tsk_a")
	assert.Equal(t, "one", got.Title)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["id"] == "tsk_a" {
			warned = true
		}
	}
	assert.True(t, warned, "duplicate identifiers are logged")
}

func TestEntityStoreWarnsOnInvalidNestedIDsAtLoad(t *testing.T) {
	backend := newFakeBackend(map[string]string{
		domain.KeyBusinesses: `[{"id":"biz_1","name":"One","products":[{"id":"prd_1"},{"id":"prd_1"}]}]`,
	})
	opts, hook := testOptions(t)
	st := LoadStore[domain.BusinessProfile](context.Background(), backend, collection(domain.EntityBusiness), nil, opts)
	require.Equal(t, 1, st.Len())

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["id"] == "biz_1" {
			warned = true
		}
	}
	assert.True(t, warned, "invalid stored entities are logged")

	_, err := st.Update(context.Background(), "biz_1", func(b *domain.BusinessProfile) error {
		b.Name = "Renamed"
		return nil
	})
	require.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestEntityStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions(t)
	st := LoadStore[domain.Customer](ctx, newFakeBackend(nil), collection(domain.EntityCustomer), nil, opts)
	require.NoError(t, st.Upsert(ctx, domain.Customer{ID: "cus_1", Tags: []string{"vip"}}))

	listed := st.List()
	listed[0].Tags[0] = "mutated"
	got, err := st.Get("cus_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, got.Tags)

	got.Tags[0] = "mutated again"
	again, _ := st.Find("cus_1")
	assert.Equal(t, []string{"vip"}, again.Tags)
}

func TestEntityStoreUpdate(t *testing.T) {
	ctx := context.Background()
	st := taskStore(t, newFakeBackend(nil), domain.Task{ID: "tsk_a", Title: "draft"})

	updated, err := st.Update(ctx, "tsk_a", func(task *domain.Task) error {
		task.Done = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, updated.Done)

	_, err = st.Update(ctx, "tsk_missing", func(*domain.Task) error { return nil })
	var nf domain.ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.ErrNotFound{Entity: domain.EntityTask, ID: "tsk_missing"}, nf)

	boom := errors.New("boom")
	_, err = st.Update(ctx, "tsk_a", func(task *domain.Task) error {
		task.Title = "discarded"
		return boom
	})
	require.ErrorIs(t, err, boom)
	got, _ := st.Get("tsk_a")
	assert.Equal(t, "draft", got.Title)

	_, err = st.Update(ctx, "tsk_a", func(task *domain.Task) error {
		task.ID = "tsk_other"
		return nil
	})
	require.ErrorContains(t, err, "identifier changed")
}

func TestEntityStoreReplaceAllAndClear(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(nil)
	st := taskStore(t, backend, domain.Task{ID: "tsk_a"})

	err := st.ReplaceAll(ctx, []domain.Task{{ID: "tsk_x"}, {ID: "tsk_x"}})
	var dup domain.DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "tsk_x", dup.ID)
	assert.Equal(t, []string{"tsk_a"}, ids(st.List()))

	require.NoError(t, st.ReplaceAll(ctx, []domain.Task{{ID: "tsk_y"}, {ID: "tsk_z"}}))
	assert.Equal(t, []string{"tsk_y", "tsk_z"}, ids(st.List()))

	require.NoError(t, st.Clear(ctx))
	assert.Zero(t, st.Len())
	raw, _ := backend.raw(domain.KeyTasks)
	assert.Equal(t, "[]", raw)
}

func TestEntityStoreFilterAndMap(t *testing.T) {
	ctx := context.Background()
	st := taskStore(t, newFakeBackend(nil),
		domain.Task{ID: "tsk_a", BusinessID: "biz_1"},
		domain.Task{ID: "tsk_b", BusinessID: "biz_2"},
		domain.Task{ID: "tsk_c", BusinessID: "biz_1"},
	)
	mine := st.Filter(func(task domain.Task) bool { return task.BusinessID == "biz_1" })
	assert.Equal(t, []string{"tsk_a", "tsk_c"}, ids(mine))

	require.NoError(t, st.Map(ctx, func(task domain.Task) domain.Task {
		task.Done = true
		return task
	}))
	for _, task := range st.List() {
		assert.True(t, task.Done, task.ID)
	}
}
