package core

import (
	"bizstate/pkg/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClock = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600)) }

func newTestNotifier(t *testing.T, backend *fakeBackend) *Notifier {
	t.Helper()
	opts, _ := testOptions(t)
	st := LoadStore(context.Background(), backend, collection(domain.EntityNotification), []domain.Notification{}, opts)
	return NewNotifier(st, testClock)
}

func TestNotifierNewestFirst(t *testing.T) {
	ctx := context.Background()
	n := newTestNotifier(t, newFakeBackend(nil))

	first, err := n.Notify(ctx, "One", "first", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationInfo, first.Kind)
	assert.Equal(t, time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC), first.CreatedAt)
	assert.Contains(t, string(first.ID), "ntf_")

	second, err := n.Publish(ctx, LowStock{ProductID: "prd_3", Name: "Celebration Cake", Remaining: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationWarning, second.Kind)
	assert.Equal(t, "/products/prd_3", second.Link)
	assert.Equal(t, "Celebration Cake has 2 left in stock.", second.Message)

	list := n.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestNotifierReadState(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(nil)
	n := newTestNotifier(t, backend)
	a, err := n.Notify(ctx, "A", "a", domain.NotificationSuccess, "")
	require.NoError(t, err)
	_, err = n.Notify(ctx, "B", "b", domain.NotificationError, "")
	require.NoError(t, err)

	require.NoError(t, n.MarkRead(ctx, a.ID))
	assert.Len(t, n.Unread(), 1)

	var nf domain.ErrNotFound
	require.ErrorAs(t, n.MarkRead(ctx, "ntf_missing"), &nf)

	require.NoError(t, n.MarkAllRead(ctx))
	assert.Empty(t, n.Unread())
	assert.Len(t, n.List(), 2)

	reloaded := newTestNotifier(t, backend)
	assert.Empty(t, reloaded.Unread())

	require.NoError(t, n.ClearAll(ctx))
	assert.Empty(t, n.List())
}

func TestNotifierRejectsUnknownKind(t *testing.T) {
	n := newTestNotifier(t, newFakeBackend(nil))
	_, err := n.Notify(context.Background(), "x", "y", "loud", "")
	require.Error(t, err)
	assert.Empty(t, n.List())
}

func TestEventMessages(t *testing.T) {
	cases := []struct {
		event Event
		want  Message
	}{
		{PayoutRequested{Amount: 100, Currency: "USD"}, Message{"Payout requested", "A payout of 100.00 USD is being processed.", domain.NotificationInfo, "/payments"}},
		{PaymentReceived{Amount: 12.5, Currency: "EUR"}, Message{"Payment received", "Received 12.50 EUR.", domain.NotificationSuccess, "/payments"}},
		{PaymentReceived{Amount: 12.5, Currency: "EUR", Customer: "Ada"}, Message{"Payment received", "Received 12.50 EUR from Ada.", domain.NotificationSuccess, "/payments"}},
		{PaymentFailed{Amount: 3, Currency: "USD", Reason: "card declined"}, Message{"Payment failed", "A payment of 3.00 USD failed: card declined", domain.NotificationError, "/payments"}},
		{FlowGenerated{FlowID: "flw_1", Name: "Welcome"}, Message{"Flow generated", `"Welcome" is ready for review.`, domain.NotificationSuccess, "/flows/flw_1"}},
		{ScrapeCompleted{URL: "https://a.example", Documents: 3}, Message{"Website imported", "Imported 3 page(s) from https://a.example.", domain.NotificationSuccess, "/knowledge"}},
		{TicketReplyDrafted{TicketID: "tkt_1", Subject: "Cake"}, Message{"Reply drafted", `A draft reply is ready for "Cake".`, domain.NotificationInfo, "/tickets/tkt_1"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.event.Describe())
	}
}
