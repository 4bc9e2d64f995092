package core

import (
	"bizstate/pkg/domain"
	"fmt"
)

// Message is the user-visible content of a notification.
type Message struct {
	Title   string
	Message string
	Kind    domain.NotificationKind
	Link    string
}

// Event is a domain occurrence that is surfaced to the user as a notification.
type Event interface {
	Describe() Message
}

// PayoutRequested is published when a payout transaction is recorded.
type PayoutRequested struct {
	TransactionID domain.TransactionID
	Amount        float64
	Currency      string
}

func (e PayoutRequested) Describe() Message {
	return Message{
		Title:   "Payout requested",
		Message: fmt.Sprintf("A payout of %.2f %s is being processed.", e.Amount, e.Currency),
		Kind:    domain.NotificationInfo,
		Link:    "/payments",
	}
}

// PaymentReceived is published when the gateway reports a successful charge.
type PaymentReceived struct {
	TransactionID domain.TransactionID
	Amount        float64
	Currency      string
	Customer      string
}

func (e PaymentReceived) Describe() Message {
	msg := fmt.Sprintf("Received %.2f %s.", e.Amount, e.Currency)
	if e.Customer != "" {
		msg = fmt.Sprintf("Received %.2f %s from %s.", e.Amount, e.Currency, e.Customer)
	}
	return Message{Title: "Payment received", Message: msg, Kind: domain.NotificationSuccess, Link: "/payments"}
}

// PaymentFailed is published when the gateway rejects a charge.
type PaymentFailed struct {
	Amount   float64
	Currency string
	Reason   string
}

func (e PaymentFailed) Describe() Message {
	return Message{
		Title:   "Payment failed",
		Message: fmt.Sprintf("A payment of %.2f %s failed: %s", e.Amount, e.Currency, e.Reason),
		Kind:    domain.NotificationError,
		Link:    "/payments",
	}
}

// FlowGenerated is published when a generated flow is added to a business.
type FlowGenerated struct {
	FlowID domain.FlowID
	Name   string
}

func (e FlowGenerated) Describe() Message {
	return Message{
		Title:   "Flow generated",
		Message: fmt.Sprintf("%q is ready for review.", e.Name),
		Kind:    domain.NotificationSuccess,
		Link:    "/flows/" + string(e.FlowID),
	}
}

// ScrapeCompleted is published when a site import adds knowledge documents.
type ScrapeCompleted struct {
	URL       string
	Documents int
}

func (e ScrapeCompleted) Describe() Message {
	return Message{
		Title:   "Website imported",
		Message: fmt.Sprintf("Imported %d page(s) from %s.", e.Documents, e.URL),
		Kind:    domain.NotificationSuccess,
		Link:    "/knowledge",
	}
}

// LowStock is published when an order leaves a product at or below the threshold.
type LowStock struct {
	ProductID domain.ProductID
	Name      string
	Remaining int
}

func (e LowStock) Describe() Message {
	return Message{
		Title:   "Low stock",
		Message: fmt.Sprintf("%s has %d left in stock.", e.Name, e.Remaining),
		Kind:    domain.NotificationWarning,
		Link:    "/products/" + string(e.ProductID),
	}
}

// TicketReplyDrafted is published when a reply draft is attached to a ticket.
type TicketReplyDrafted struct {
	TicketID domain.TicketID
	Subject  string
}

func (e TicketReplyDrafted) Describe() Message {
	return Message{
		Title:   "Reply drafted",
		Message: fmt.Sprintf("A draft reply is ready for %q.", e.Subject),
		Kind:    domain.NotificationInfo,
		Link:    "/tickets/" + string(e.TicketID),
	}
}
