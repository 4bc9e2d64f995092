package domain

// Collection describes one durable collection: the fixed storage key it is persisted under
// and the insertion policy applied to new identifiers.
type Collection struct {
	Entity EntityType
	Key    string
	Order  Ordering
}

// Fixed durable keys. Each value is a JSON document; collections hold an array, the
// active selection holds a single JSON string.
const (
	KeyBusinesses     = "businesses"
	KeyActiveBusiness = "active_business_id"
	KeyCustomers      = "customers"
	KeyOrders         = "orders"
	KeyTransactions   = "transactions"
	KeyTickets        = "tickets"
	KeyNotifications  = "notifications"
	KeyTasks          = "tasks"
	KeyCampaigns      = "campaigns"
	KeyAppointments   = "appointments"
	KeyMessageLogs    = "message_logs"
	KeyWebhooks       = "webhooks"
)

// Collections lists every top-level collection. Event-log shaped collections
// (transactions, notifications, message logs) are newest first.
var Collections = []Collection{
	{Entity: EntityBusiness, Key: KeyBusinesses, Order: Append},
	{Entity: EntityCustomer, Key: KeyCustomers, Order: Append},
	{Entity: EntityOrder, Key: KeyOrders, Order: Append},
	{Entity: EntityTransaction, Key: KeyTransactions, Order: Prepend},
	{Entity: EntityTicket, Key: KeyTickets, Order: Append},
	{Entity: EntityNotification, Key: KeyNotifications, Order: Prepend},
	{Entity: EntityTask, Key: KeyTasks, Order: Append},
	{Entity: EntityCampaign, Key: KeyCampaigns, Order: Append},
	{Entity: EntityAppointment, Key: KeyAppointments, Order: Append},
	{Entity: EntityMessageLog, Key: KeyMessageLogs, Order: Prepend},
	{Entity: EntityWebhook, Key: KeyWebhooks, Order: Append},
}

// CollectionFor returns the collection descriptor for an entity type.
func CollectionFor(entity EntityType) (Collection, bool) {
	for _, c := range Collections {
		if c.Entity == entity {
			return c, true
		}
	}
	return Collection{}, false
}

// CollectionByKey returns the collection persisted under key.
func CollectionByKey(key string) (Collection, bool) {
	for _, c := range Collections {
		if c.Key == key {
			return c, true
		}
	}
	return Collection{}, false
}
