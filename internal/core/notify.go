package core

import (
	"bizstate/pkg/domain"
	"context"
	"time"
)

// Notifier appends user-visible notifications, newest first.
type Notifier struct {
	store *EntityStore[domain.Notification]
	now   func() time.Time
}

// NewNotifier returns a Notifier writing to store. A nil now uses time.Now.
func NewNotifier(store *EntityStore[domain.Notification], now func() time.Time) *Notifier {
	if now == nil {
		now = time.Now
	}
	return &Notifier{store: store, now: now}
}

// Notify records a new unread notification and returns it.
func (n *Notifier) Notify(ctx context.Context, title, message string, kind domain.NotificationKind, link string) (domain.Notification, error) {
	if kind == "" {
		kind = domain.NotificationInfo
	}
	note := domain.Notification{
		ID:        domain.NotificationID(domain.NewID(domain.EntityNotification)),
		Title:     title,
		Message:   message,
		Kind:      kind,
		Link:      link,
		CreatedAt: n.now().UTC(),
	}
	return note, n.store.Upsert(ctx, note)
}

// Publish records the notification describing e.
func (n *Notifier) Publish(ctx context.Context, e Event) (domain.Notification, error) {
	m := e.Describe()
	return n.Notify(ctx, m.Title, m.Message, m.Kind, m.Link)
}

// MarkRead flags one notification as read.
func (n *Notifier) MarkRead(ctx context.Context, id domain.NotificationID) error {
	_, err := n.store.Update(ctx, string(id), func(note *domain.Notification) error {
		note.Read = true
		return nil
	})
	return err
}

// MarkAllRead flags every notification as read in a single write.
func (n *Notifier) MarkAllRead(ctx context.Context) error {
	return n.store.Map(ctx, func(note domain.Notification) domain.Notification {
		note.Read = true
		return note
	})
}

// ClearAll removes every notification.
func (n *Notifier) ClearAll(ctx context.Context) error { return n.store.Clear(ctx) }

// List returns all notifications, newest first.
func (n *Notifier) List() []domain.Notification { return n.store.List() }

// Unread returns the unread notifications, newest first.
func (n *Notifier) Unread() []domain.Notification {
	return n.store.Filter(func(note domain.Notification) bool { return !note.Read })
}
