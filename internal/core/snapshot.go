package core

import (
	"bizstate/pkg/domain"
	"context"
	"fmt"
)

// ApplySeed writes seed to every collection whose key is absent from the backend, or to
// every collection when force is set. It returns the keys written, in collection order.
func (w *Workspace) ApplySeed(ctx context.Context, seed Seed, force bool) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	stored, err := w.backend.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored keys: %w", err)
	}
	present := make(map[string]bool, len(stored))
	for _, k := range stored {
		present[k] = true
	}
	s := &seeder{ctx: ctx, present: present, force: force}
	seedStore(s, w.Businesses, seed.Businesses)
	seedStore(s, w.Customers, seed.Customers)
	seedStore(s, w.Orders, seed.Orders)
	seedStore(s, w.Transactions, seed.Transactions)
	seedStore(s, w.Tickets, seed.Tickets)
	seedStore(s, w.Notifications, seed.Notifications)
	seedStore(s, w.Tasks, seed.Tasks)
	seedStore(s, w.Campaigns, seed.Campaigns)
	seedStore(s, w.Appointments, seed.Appointments)
	seedStore(s, w.MessageLogs, seed.MessageLogs)
	seedStore(s, w.Webhooks, seed.Webhooks)
	if s.err == nil && (force || !present[domain.KeyActiveBusiness]) {
		if s.err = w.Active.Set(ctx, seed.ActiveFallback()); s.err == nil {
			s.written = append(s.written, domain.KeyActiveBusiness)
		}
	}
	return s.written, s.err
}

type seeder struct {
	ctx     context.Context
	present map[string]bool
	force   bool
	written []string
	err     error
}

func seedStore[T domain.Entity](s *seeder, st *EntityStore[T], items []T) {
	if s.err != nil || (!s.force && s.present[st.Key()]) {
		return
	}
	if items == nil {
		items = []T{}
	}
	if s.err = st.ReplaceAll(s.ctx, items); s.err == nil {
		s.written = append(s.written, st.Key())
	}
}

// Collection returns a copy of the collection stored under key.
func (w *Workspace) Collection(key string) (any, bool) {
	switch key {
	case domain.KeyBusinesses:
		return w.Businesses.List(), true
	case domain.KeyCustomers:
		return w.Customers.List(), true
	case domain.KeyOrders:
		return w.Orders.List(), true
	case domain.KeyTransactions:
		return w.Transactions.List(), true
	case domain.KeyTickets:
		return w.Tickets.List(), true
	case domain.KeyNotifications:
		return w.Notifications.List(), true
	case domain.KeyTasks:
		return w.Tasks.List(), true
	case domain.KeyCampaigns:
		return w.Campaigns.List(), true
	case domain.KeyAppointments:
		return w.Appointments.List(), true
	case domain.KeyMessageLogs:
		return w.MessageLogs.List(), true
	case domain.KeyWebhooks:
		return w.Webhooks.List(), true
	case domain.KeyActiveBusiness:
		return w.Active.Stored(), true
	}
	return nil, false
}

// Snapshot returns every collection and the stored active pointer keyed by durable key.
func (w *Workspace) Snapshot() map[string]any {
	out := make(map[string]any, len(domain.Collections)+1)
	for _, c := range domain.Collections {
		out[c.Key], _ = w.Collection(c.Key)
	}
	out[domain.KeyActiveBusiness] = w.Active.Stored()
	return out
}
