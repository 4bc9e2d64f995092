// Package domain defines the persisted entities, typed identifiers, collection keys and
// patch types shared by every bizstate store.
package domain

import "time"

// EntityType identifies the kind of record held by a collection.
type EntityType string

// Supported entity types. Each top-level type is persisted under its own collection key.
const (
	EntityBusiness     EntityType = "business"
	EntityCustomer     EntityType = "customer"
	EntityOrder        EntityType = "order"
	EntityTransaction  EntityType = "transaction"
	EntityTicket       EntityType = "ticket"
	EntityNotification EntityType = "notification"
	EntityTask         EntityType = "task"
	EntityCampaign     EntityType = "campaign"
	EntityAppointment  EntityType = "appointment"
	EntityMessageLog   EntityType = "message_log"
	EntityWebhook      EntityType = "webhook"

	// Nested entity types live inside a BusinessProfile document.
	EntityProduct     EntityType = "product"
	EntityFlow        EntityType = "flow"
	EntityCoupon      EntityType = "coupon"
	EntityLoyaltyTier EntityType = "loyalty_tier"
	EntityDocument    EntityType = "document"
	EntityFAQ         EntityType = "faq"
	EntityCorrection  EntityType = "correction"
	EntityRoutingRule EntityType = "routing_rule"
)

// Entity is implemented by every record that can live in a collection.
type Entity interface {
	EntityID() string
}

// Ordering is the insertion policy a collection applies to new identifiers.
type Ordering int

const (
	// Append inserts new entities at the end of the collection.
	Append Ordering = iota
	// Prepend inserts new entities at the front (newest first).
	Prepend
)

func (o Ordering) String() string {
	if o == Prepend {
		return "prepend"
	}
	return "append"
}

// NotificationKind classifies a system notification.
type NotificationKind string

// Notification kinds.
const (
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
	NotificationWarning NotificationKind = "warning"
	NotificationError   NotificationKind = "error"
)

// TransactionKind distinguishes money movements.
type TransactionKind string

// Transaction kinds.
const (
	TransactionPayment TransactionKind = "payment"
	TransactionPayout  TransactionKind = "payout"
	TransactionRefund  TransactionKind = "refund"
)

// TransactionStatus enumerates transaction states.
type TransactionStatus string

// Transaction statuses.
const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// OrderStatus enumerates order states.
type OrderStatus string

// Order statuses.
const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderFulfilled OrderStatus = "fulfilled"
	OrderCancelled OrderStatus = "cancelled"
)

// TicketStatus enumerates support ticket states.
type TicketStatus string

// Ticket statuses.
const (
	TicketOpen     TicketStatus = "open"
	TicketPending  TicketStatus = "pending"
	TicketResolved TicketStatus = "resolved"
)

// Customer is a person buying from a business.
type Customer struct {
	ID            CustomerID `json:"id" yaml:"id" validate:"required"`
	BusinessID    BusinessID `json:"business_id" yaml:"business_id"`
	Name          string     `json:"name" yaml:"name"`
	Email         string     `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Phone         string     `json:"phone,omitempty" yaml:"phone,omitempty"`
	Tags          []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	LoyaltyPoints int        `json:"loyalty_points" yaml:"loyalty_points"`
	TotalSpent    float64    `json:"total_spent" yaml:"total_spent"`
	CreatedAt     time.Time  `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (c Customer) EntityID() string { return string(c.ID) }

// Clone returns a copy that shares no slices with c.
func (c Customer) Clone() Customer {
	cp := c
	cp.Tags = cloneStrings(c.Tags)
	return cp
}

// OrderItem is a single catalog line on an order.
type OrderItem struct {
	ProductID ProductID `json:"product_id" yaml:"product_id"`
	Name      string    `json:"name" yaml:"name"`
	Quantity  int       `json:"quantity" yaml:"quantity"`
	UnitPrice float64   `json:"unit_price" yaml:"unit_price"`
}

// Order is a purchase placed by a customer.
type Order struct {
	ID         OrderID     `json:"id" yaml:"id" validate:"required"`
	BusinessID BusinessID  `json:"business_id" yaml:"business_id"`
	CustomerID CustomerID  `json:"customer_id" yaml:"customer_id"`
	Items      []OrderItem `json:"items" yaml:"items"`
	Total      float64     `json:"total" yaml:"total"`
	Status     OrderStatus `json:"status" yaml:"status"`
	CouponCode string      `json:"coupon_code,omitempty" yaml:"coupon_code,omitempty"`
	CreatedAt  time.Time   `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (o Order) EntityID() string { return string(o.ID) }

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	cp := o
	if o.Items != nil {
		cp.Items = append([]OrderItem(nil), o.Items...)
	}
	return cp
}

// Transaction records a money movement reported by the payment gateway.
type Transaction struct {
	ID         TransactionID     `json:"id" yaml:"id" validate:"required"`
	BusinessID BusinessID        `json:"business_id" yaml:"business_id"`
	CustomerID CustomerID        `json:"customer_id,omitempty" yaml:"customer_id,omitempty"`
	OrderID    OrderID           `json:"order_id,omitempty" yaml:"order_id,omitempty"`
	Kind       TransactionKind   `json:"kind" yaml:"kind"`
	Amount     float64           `json:"amount" yaml:"amount"`
	Currency   string            `json:"currency" yaml:"currency"`
	Status     TransactionStatus `json:"status" yaml:"status"`
	GatewayRef string            `json:"gateway_ref,omitempty" yaml:"gateway_ref,omitempty"`
	PaymentURL string            `json:"payment_url,omitempty" yaml:"payment_url,omitempty"`
	Message    string            `json:"message,omitempty" yaml:"message,omitempty"`
	CreatedAt  time.Time         `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (t Transaction) EntityID() string { return string(t.ID) }

// Ticket is a customer support request.
type Ticket struct {
	ID         TicketID     `json:"id" yaml:"id" validate:"required"`
	BusinessID BusinessID   `json:"business_id" yaml:"business_id"`
	CustomerID CustomerID   `json:"customer_id,omitempty" yaml:"customer_id,omitempty"`
	Subject    string       `json:"subject" yaml:"subject"`
	Body       string       `json:"body" yaml:"body"`
	Status     TicketStatus `json:"status" yaml:"status"`
	Priority   string       `json:"priority,omitempty" yaml:"priority,omitempty"`
	DraftReply string       `json:"draft_reply,omitempty" yaml:"draft_reply,omitempty"`
	CreatedAt  time.Time    `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (t Ticket) EntityID() string { return string(t.ID) }

// Notification is a user-visible system message derived from a domain mutation.
type Notification struct {
	ID        NotificationID   `json:"id" yaml:"id" validate:"required"`
	Title     string           `json:"title" yaml:"title"`
	Message   string           `json:"message" yaml:"message"`
	Kind      NotificationKind `json:"kind" yaml:"kind" validate:"oneof=info success warning error"`
	Link      string           `json:"link,omitempty" yaml:"link,omitempty"`
	Read      bool             `json:"read" yaml:"read"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (n Notification) EntityID() string { return string(n.ID) }

// Task is a to-do item scoped to a business.
type Task struct {
	ID         TaskID     `json:"id" yaml:"id" validate:"required"`
	BusinessID BusinessID `json:"business_id" yaml:"business_id"`
	Title      string     `json:"title" yaml:"title"`
	Done       bool       `json:"done" yaml:"done"`
	Assignee   string     `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty" yaml:"due_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (t Task) EntityID() string { return string(t.ID) }

// Campaign is an outbound marketing message.
type Campaign struct {
	ID          CampaignID `json:"id" yaml:"id" validate:"required"`
	BusinessID  BusinessID `json:"business_id" yaml:"business_id"`
	Name        string     `json:"name" yaml:"name"`
	Channel     string     `json:"channel" yaml:"channel"`
	Status      string     `json:"status" yaml:"status"`
	Audience    []string   `json:"audience,omitempty" yaml:"audience,omitempty"`
	Message     string     `json:"message" yaml:"message"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" yaml:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (c Campaign) EntityID() string { return string(c.ID) }

// Clone returns a copy that shares no slices with c.
func (c Campaign) Clone() Campaign {
	cp := c
	cp.Audience = cloneStrings(c.Audience)
	return cp
}

// Appointment is a booked service slot.
type Appointment struct {
	ID              AppointmentID `json:"id" yaml:"id" validate:"required"`
	BusinessID      BusinessID    `json:"business_id" yaml:"business_id"`
	CustomerID      CustomerID    `json:"customer_id" yaml:"customer_id"`
	Service         string        `json:"service" yaml:"service"`
	StartsAt        time.Time     `json:"starts_at" yaml:"starts_at"`
	DurationMinutes int           `json:"duration_minutes" yaml:"duration_minutes"`
	Status          string        `json:"status" yaml:"status"`
	CreatedAt       time.Time     `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (a Appointment) EntityID() string { return string(a.ID) }

// MessageLog is one inbound or outbound conversational message.
type MessageLog struct {
	ID         MessageLogID `json:"id" yaml:"id" validate:"required"`
	BusinessID BusinessID   `json:"business_id" yaml:"business_id"`
	CustomerID CustomerID   `json:"customer_id,omitempty" yaml:"customer_id,omitempty"`
	Channel    string       `json:"channel" yaml:"channel"`
	Direction  string       `json:"direction" yaml:"direction"`
	Body       string       `json:"body" yaml:"body"`
	CreatedAt  time.Time    `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (m MessageLog) EntityID() string { return string(m.ID) }

// Webhook is an outbound event subscription.
type Webhook struct {
	ID         WebhookID  `json:"id" yaml:"id" validate:"required"`
	BusinessID BusinessID `json:"business_id" yaml:"business_id"`
	URL        string     `json:"url" yaml:"url" validate:"omitempty,url"`
	Events     []string   `json:"events" yaml:"events"`
	Active     bool       `json:"active" yaml:"active"`
	Secret     string     `json:"secret,omitempty" yaml:"secret,omitempty"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (w Webhook) EntityID() string { return string(w.ID) }

// Clone returns a copy that shares no slices with w.
func (w Webhook) Clone() Webhook {
	cp := w
	cp.Events = cloneStrings(w.Events)
	return cp
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
