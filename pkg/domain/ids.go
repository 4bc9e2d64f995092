package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Typed identifiers. References between entities are by identifier only; nothing
// enforces that the referenced record exists (see ValidateReferences).
type (
	BusinessID     string
	CustomerID     string
	OrderID        string
	TransactionID  string
	TicketID       string
	NotificationID string
	TaskID         string
	CampaignID     string
	AppointmentID  string
	MessageLogID   string
	WebhookID      string

	ProductID     string
	FlowID        string
	CouponID      string
	TierID        string
	DocumentID    string
	FAQID         string
	CorrectionID  string
	RoutingRuleID string
)

// Identifier prefixes used by NewID.
var idPrefixes = map[EntityType]string{
	EntityBusiness:     "biz",
	EntityCustomer:     "cus",
	EntityOrder:        "ord",
	EntityTransaction:  "txn",
	EntityTicket:       "tkt",
	EntityNotification: "ntf",
	EntityTask:         "tsk",
	EntityCampaign:     "cmp",
	EntityAppointment:  "apt",
	EntityMessageLog:   "msg",
	EntityWebhook:      "whk",
	EntityProduct:      "prd",
	EntityFlow:         "flw",
	EntityCoupon:       "cpn",
	EntityLoyaltyTier:  "tier",
	EntityDocument:     "doc",
	EntityFAQ:          "faq",
	EntityCorrection:   "cor",
	EntityRoutingRule:  "rte",
}

// NewID returns a fresh identifier for the entity type, e.g. "ord_5f0c9a1e2b3d".
func NewID(entity EntityType) string {
	prefix, ok := idPrefixes[entity]
	if !ok {
		prefix = string(entity)
	}
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + raw[:12]
}
