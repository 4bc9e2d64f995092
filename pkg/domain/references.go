package domain

import "sort"

// DanglingReference describes an identifier that points at a record which does not exist.
// Dangling references are reported, never repaired: deletes do not cascade.
type DanglingReference struct {
	From     EntityType `json:"from"`
	FromID   string     `json:"from_id"`
	Field    string     `json:"field"`
	Target   EntityType `json:"target"`
	TargetID string     `json:"target_id"`
}

// ReferenceSet is the read-only view ValidateReferences checks against.
type ReferenceSet struct {
	Businesses   []BusinessProfile
	Customers    []Customer
	Orders       []Order
	Transactions []Transaction
	Tickets      []Ticket
	Tasks        []Task
	Campaigns    []Campaign
	Appointments []Appointment
	MessageLogs  []MessageLog
	Webhooks     []Webhook
}

// ValidateReferences returns every reference in set whose target is missing, sorted by
// source type and identifier. Empty optional references are ignored.
func ValidateReferences(set ReferenceSet) []DanglingReference {
	businesses := make(map[BusinessID]BusinessProfile, len(set.Businesses))
	for _, b := range set.Businesses {
		businesses[b.ID] = b
	}
	customers := make(map[CustomerID]struct{}, len(set.Customers))
	for _, c := range set.Customers {
		customers[c.ID] = struct{}{}
	}
	orders := make(map[OrderID]struct{}, len(set.Orders))
	for _, o := range set.Orders {
		orders[o.ID] = struct{}{}
	}

	var out []DanglingReference
	business := func(from EntityType, fromID string, id BusinessID) {
		if id == "" {
			return
		}
		if _, ok := businesses[id]; !ok {
			out = append(out, DanglingReference{From: from, FromID: fromID, Field: "business_id", Target: EntityBusiness, TargetID: string(id)})
		}
	}
	customer := func(from EntityType, fromID string, id CustomerID) {
		if id == "" {
			return
		}
		if _, ok := customers[id]; !ok {
			out = append(out, DanglingReference{From: from, FromID: fromID, Field: "customer_id", Target: EntityCustomer, TargetID: string(id)})
		}
	}

	for _, c := range set.Customers {
		business(EntityCustomer, string(c.ID), c.BusinessID)
	}
	for _, o := range set.Orders {
		business(EntityOrder, string(o.ID), o.BusinessID)
		customer(EntityOrder, string(o.ID), o.CustomerID)
		if b, ok := businesses[o.BusinessID]; ok {
			for _, item := range o.Items {
				if _, found := b.Product(item.ProductID); !found && item.ProductID != "" {
					out = append(out, DanglingReference{From: EntityOrder, FromID: string(o.ID), Field: "items.product_id", Target: EntityProduct, TargetID: string(item.ProductID)})
				}
			}
		}
	}
	for _, t := range set.Transactions {
		business(EntityTransaction, string(t.ID), t.BusinessID)
		customer(EntityTransaction, string(t.ID), t.CustomerID)
		if t.OrderID != "" {
			if _, ok := orders[t.OrderID]; !ok {
				out = append(out, DanglingReference{From: EntityTransaction, FromID: string(t.ID), Field: "order_id", Target: EntityOrder, TargetID: string(t.OrderID)})
			}
		}
	}
	for _, t := range set.Tickets {
		business(EntityTicket, string(t.ID), t.BusinessID)
		customer(EntityTicket, string(t.ID), t.CustomerID)
	}
	for _, t := range set.Tasks {
		business(EntityTask, string(t.ID), t.BusinessID)
	}
	for _, c := range set.Campaigns {
		business(EntityCampaign, string(c.ID), c.BusinessID)
	}
	for _, a := range set.Appointments {
		business(EntityAppointment, string(a.ID), a.BusinessID)
		customer(EntityAppointment, string(a.ID), a.CustomerID)
	}
	for _, m := range set.MessageLogs {
		business(EntityMessageLog, string(m.ID), m.BusinessID)
		customer(EntityMessageLog, string(m.ID), m.CustomerID)
	}
	for _, w := range set.Webhooks {
		business(EntityWebhook, string(w.ID), w.BusinessID)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].FromID < out[j].FromID
	})
	return out
}
