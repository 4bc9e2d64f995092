package core

import (
	"bizstate/internal/durable"
	"bizstate/pkg/domain"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultLowStockThreshold is the remaining stock at or below which an order publishes a
// LowStock notification.
const DefaultLowStockThreshold = 5

// Workspace owns every store of one application state. Commands are serialized with each
// other and with scheduled jobs. Multi-store commands are best effort: a failure partway
// leaves the earlier writes applied.
type Workspace struct {
	mu      sync.Mutex
	jobs    sync.WaitGroup
	backend durable.Backend
	log     logrus.FieldLogger
	now     func() time.Time

	lowStock int

	Businesses    *EntityStore[domain.BusinessProfile]
	Customers     *EntityStore[domain.Customer]
	Orders        *EntityStore[domain.Order]
	Transactions  *EntityStore[domain.Transaction]
	Tickets       *EntityStore[domain.Ticket]
	Notifications *EntityStore[domain.Notification]
	Tasks         *EntityStore[domain.Task]
	Campaigns     *EntityStore[domain.Campaign]
	Appointments  *EntityStore[domain.Appointment]
	MessageLogs   *EntityStore[domain.MessageLog]
	Webhooks      *EntityStore[domain.Webhook]

	Active     *ActiveSelection
	Aggregates *Aggregates
	Notifier   *Notifier
}

type workspaceConfig struct {
	opts     Options
	seed     *Seed
	now      func() time.Time
	lowStock int
}

// WorkspaceOption configures OpenWorkspace.
type WorkspaceOption func(*workspaceConfig)

// WithLogger sets the logger shared by every store.
func WithLogger(l logrus.FieldLogger) WorkspaceOption {
	return func(c *workspaceConfig) { c.opts.Logger = l }
}

// WithMetrics records slice fallbacks and write failures on m.
func WithMetrics(m *durable.Metrics) WorkspaceOption {
	return func(c *workspaceConfig) { c.opts.Metrics = m }
}

// WithSeed replaces DefaultSeed as the fallback for absent keys.
func WithSeed(s Seed) WorkspaceOption {
	return func(c *workspaceConfig) { c.seed = &s }
}

// WithClock overrides time.Now for created-at stamps and coupon expiry.
func WithClock(now func() time.Time) WorkspaceOption {
	return func(c *workspaceConfig) { c.now = now }
}

// WithLowStockThreshold overrides DefaultLowStockThreshold.
func WithLowStockThreshold(n int) WorkspaceOption {
	return func(c *workspaceConfig) { c.lowStock = n }
}

func collection(entity domain.EntityType) domain.Collection {
	c, ok := domain.CollectionFor(entity)
	if !ok {
		panic(fmt.Sprintf("no collection registered for %s", entity))
	}
	return c
}

// OpenWorkspace loads every collection from backend. Loading never fails: absent or
// unreadable keys fall back to the seed.
func OpenWorkspace(ctx context.Context, backend durable.Backend, options ...WorkspaceOption) *Workspace {
	cfg := workspaceConfig{now: time.Now, lowStock: DefaultLowStockThreshold}
	for _, o := range options {
		o(&cfg)
	}
	seed := DefaultSeed()
	if cfg.seed != nil {
		seed = *cfg.seed
	}
	opts := cfg.opts
	log := opts.logger()
	opts.Logger = log
	w := &Workspace{
		backend:       backend,
		log:           log,
		now:           cfg.now,
		lowStock:      cfg.lowStock,
		Businesses:    LoadStore(ctx, backend, collection(domain.EntityBusiness), seed.Businesses, opts),
		Customers:     LoadStore(ctx, backend, collection(domain.EntityCustomer), seed.Customers, opts),
		Orders:        LoadStore(ctx, backend, collection(domain.EntityOrder), seed.Orders, opts),
		Transactions:  LoadStore(ctx, backend, collection(domain.EntityTransaction), seed.Transactions, opts),
		Tickets:       LoadStore(ctx, backend, collection(domain.EntityTicket), seed.Tickets, opts),
		Notifications: LoadStore(ctx, backend, collection(domain.EntityNotification), seed.Notifications, opts),
		Tasks:         LoadStore(ctx, backend, collection(domain.EntityTask), seed.Tasks, opts),
		Campaigns:     LoadStore(ctx, backend, collection(domain.EntityCampaign), seed.Campaigns, opts),
		Appointments:  LoadStore(ctx, backend, collection(domain.EntityAppointment), seed.Appointments, opts),
		MessageLogs:   LoadStore(ctx, backend, collection(domain.EntityMessageLog), seed.MessageLogs, opts),
		Webhooks:      LoadStore(ctx, backend, collection(domain.EntityWebhook), seed.Webhooks, opts),
		Active:        LoadActive(ctx, backend, seed.ActiveFallback(), opts),
	}
	w.Aggregates = NewAggregates(w.Businesses)
	w.Notifier = NewNotifier(w.Notifications, cfg.now)
	return w
}

// Backend returns the substrate the workspace writes to.
func (w *Workspace) Backend() durable.Backend { return w.backend }

// Close waits for scheduled jobs and closes the backend.
func (w *Workspace) Close() error {
	w.jobs.Wait()
	return w.backend.Close()
}

// ActiveBusiness resolves the active business, self-healing a stale pointer to the
// first business. It returns domain.ErrNoActiveEntity when there are no businesses.
func (w *Workspace) ActiveBusiness() (domain.BusinessProfile, error) {
	businesses := w.Businesses.List()
	id, err := w.Active.Get(businesses)
	if err != nil {
		return domain.BusinessProfile{}, err
	}
	for _, b := range businesses {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.BusinessProfile{}, domain.ErrNotFound{Entity: domain.EntityBusiness, ID: string(id)}
}

// SwitchBusiness points the active selection at an existing business.
func (w *Workspace) SwitchBusiness(ctx context.Context, id domain.BusinessID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.Businesses.Find(string(id)); !ok {
		return domain.ErrNotFound{Entity: domain.EntityBusiness, ID: string(id)}
	}
	return w.Active.Set(ctx, id)
}

// CreateBusiness stores a new business and makes it active. An empty identifier is
// generated and empty nested collections are initialized.
func (w *Workspace) CreateBusiness(ctx context.Context, b domain.BusinessProfile) (domain.BusinessProfile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b.ID == "" {
		b.ID = domain.BusinessID(domain.NewID(domain.EntityBusiness))
	}
	if _, exists := w.Businesses.Find(string(b.ID)); exists {
		return domain.BusinessProfile{}, domain.DuplicateIDError{Entity: domain.EntityBusiness, ID: string(b.ID)}
	}
	if b.Currency == "" {
		b.Currency = "USD"
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = w.now().UTC()
	}
	initNested(&b)
	if err := w.Businesses.Upsert(ctx, b); err != nil {
		return domain.BusinessProfile{}, err
	}
	if err := w.Active.Set(ctx, b.ID); err != nil {
		return b, err
	}
	return b, nil
}

func initNested(b *domain.BusinessProfile) {
	if b.Products == nil {
		b.Products = []domain.Product{}
	}
	if b.Flows == nil {
		b.Flows = []domain.Flow{}
	}
	if b.Promotions == nil {
		b.Promotions = []domain.Coupon{}
	}
	if b.LoyaltyProgram.Tiers == nil {
		b.LoyaltyProgram.Tiers = []domain.LoyaltyTier{}
	}
	if b.Documents == nil {
		b.Documents = []domain.KnowledgeDocument{}
	}
	if b.FAQs == nil {
		b.FAQs = []domain.FAQOverride{}
	}
	if b.Corrections == nil {
		b.Corrections = []domain.TrainingCorrection{}
	}
	if b.RoutingRules == nil {
		b.RoutingRules = []domain.RoutingRule{}
	}
}

// DeleteBusiness removes a business. Records referring to it are kept; a stale active
// pointer heals on the next ActiveBusiness call.
func (w *Workspace) DeleteBusiness(ctx context.Context, id domain.BusinessID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Businesses.Remove(ctx, string(id))
}

// RecordPayment charges through gateway. A successful charge stores a completed payment
// transaction, marks the order paid and publishes PaymentReceived; a declined or failed
// charge publishes PaymentFailed.
func (w *Workspace) RecordPayment(ctx context.Context, gateway PaymentGateway, req PaymentRequest) (PaymentResult, error) {
	if req.Amount <= 0 {
		return PaymentResult{}, fmt.Errorf("payment amount must be positive, got %.2f", req.Amount)
	}
	business, err := w.Businesses.Get(string(req.BusinessID))
	if err != nil {
		return PaymentResult{}, err
	}
	if req.Currency == "" {
		req.Currency = business.Currency
	}
	res, chargeErr := gateway.Charge(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if chargeErr != nil || !res.Success {
		reason := res.Message
		if chargeErr != nil {
			reason = chargeErr.Error()
		}
		w.log.WithFields(logrus.Fields{"business": req.BusinessID, "amount": req.Amount}).Warn("payment failed: " + reason)
		if _, err := w.Notifier.Publish(ctx, PaymentFailed{Amount: req.Amount, Currency: req.Currency, Reason: reason}); err != nil {
			return res, err
		}
		if chargeErr != nil {
			return res, fmt.Errorf("charge: %w", chargeErr)
		}
		return res, nil
	}

	txID := domain.TransactionID(res.TransactionID)
	if txID == "" {
		txID = domain.TransactionID(domain.NewID(domain.EntityTransaction))
	}
	tx := domain.Transaction{
		ID:         txID,
		BusinessID: req.BusinessID,
		CustomerID: req.CustomerID,
		OrderID:    req.OrderID,
		Kind:       domain.TransactionPayment,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Status:     domain.TransactionCompleted,
		GatewayRef: res.TransactionID,
		PaymentURL: res.PaymentURL,
		Message:    res.Message,
		CreatedAt:  w.now().UTC(),
	}
	if err := w.Transactions.Upsert(ctx, tx); err != nil {
		return res, err
	}
	if req.OrderID != "" {
		if _, err := w.Orders.Update(ctx, string(req.OrderID), func(o *domain.Order) error {
			o.Status = domain.OrderPaid
			return nil
		}); err != nil {
			return res, err
		}
	}
	customer := ""
	if c, ok := w.Customers.Find(string(req.CustomerID)); ok {
		customer = c.Name
	}
	_, err = w.Notifier.Publish(ctx, PaymentReceived{TransactionID: txID, Amount: req.Amount, Currency: req.Currency, Customer: customer})
	return res, err
}

// RequestPayout records a pending payout transaction and publishes PayoutRequested.
func (w *Workspace) RequestPayout(ctx context.Context, businessID domain.BusinessID, amount float64) (domain.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if amount <= 0 {
		return domain.Transaction{}, fmt.Errorf("payout amount must be positive, got %.2f", amount)
	}
	business, err := w.Businesses.Get(string(businessID))
	if err != nil {
		return domain.Transaction{}, err
	}
	tx := domain.Transaction{
		ID:         domain.TransactionID(domain.NewID(domain.EntityTransaction)),
		BusinessID: businessID,
		Kind:       domain.TransactionPayout,
		Amount:     amount,
		Currency:   business.Currency,
		Status:     domain.TransactionPending,
		CreatedAt:  w.now().UTC(),
	}
	if err := w.Transactions.Upsert(ctx, tx); err != nil {
		return tx, err
	}
	_, err = w.Notifier.Publish(ctx, PayoutRequested{TransactionID: tx.ID, Amount: amount, Currency: tx.Currency})
	return tx, err
}

// OrderLine is one requested product and quantity.
type OrderLine struct {
	ProductID domain.ProductID
	Quantity  int
}

// OrderRequest describes an order to place.
type OrderRequest struct {
	BusinessID domain.BusinessID
	CustomerID domain.CustomerID
	Lines      []OrderLine
	CouponCode string
}

// PlaceOrder prices and stores an order, deducts stock, counts coupon usage, awards
// loyalty points and publishes LowStock for products at or below the threshold. The
// request is checked before the first write; later failures leave earlier writes applied.
func (w *Workspace) PlaceOrder(ctx context.Context, req OrderRequest) (domain.Order, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	business, err := w.Businesses.Get(string(req.BusinessID))
	if err != nil {
		return domain.Order{}, err
	}
	if len(req.Lines) == 0 {
		return domain.Order{}, fmt.Errorf("order for %s has no lines", req.BusinessID)
	}
	if req.CustomerID != "" {
		if _, ok := w.Customers.Find(string(req.CustomerID)); !ok {
			return domain.Order{}, domain.ErrNotFound{Entity: domain.EntityCustomer, ID: string(req.CustomerID)}
		}
	}
	want := make(map[domain.ProductID]int, len(req.Lines))
	items := make([]domain.OrderItem, 0, len(req.Lines))
	var subtotal float64
	for _, line := range req.Lines {
		p, ok := business.Product(line.ProductID)
		if !ok || !p.Active {
			return domain.Order{}, domain.ErrNotFound{Entity: domain.EntityProduct, ID: string(line.ProductID)}
		}
		if line.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("product %s: quantity must be positive", line.ProductID)
		}
		want[line.ProductID] += line.Quantity
		if want[line.ProductID] > p.Stock {
			return domain.Order{}, fmt.Errorf("product %s: insufficient stock (%d available)", p.ID, p.Stock)
		}
		items = append(items, domain.OrderItem{ProductID: p.ID, Name: p.Name, Quantity: line.Quantity, UnitPrice: p.Price})
		subtotal += p.Price * float64(line.Quantity)
	}
	now := w.now()
	var coupon domain.Coupon
	discount := 0.0
	if req.CouponCode != "" {
		c, ok := business.CouponByCode(req.CouponCode)
		if !ok {
			return domain.Order{}, domain.ErrNotFound{Entity: domain.EntityCoupon, ID: req.CouponCode}
		}
		coupon = c
		discount = c.Discount(subtotal, now)
	}

	order := domain.Order{
		ID:         domain.OrderID(domain.NewID(domain.EntityOrder)),
		BusinessID: req.BusinessID,
		CustomerID: req.CustomerID,
		Items:      items,
		Total:      subtotal - discount,
		Status:     domain.OrderPending,
		CouponCode: req.CouponCode,
		CreatedAt:  now.UTC(),
	}
	if err := w.Orders.Upsert(ctx, order); err != nil {
		return order, err
	}

	var low []LowStock
	if _, err := UpdateNested(ctx, w.Aggregates, req.BusinessID, Products, func(products []domain.Product) ([]domain.Product, error) {
		for i := range products {
			n, ok := want[products[i].ID]
			if !ok {
				continue
			}
			products[i].Stock -= n
			if products[i].Stock <= w.lowStock {
				low = append(low, LowStock{ProductID: products[i].ID, Name: products[i].Name, Remaining: products[i].Stock})
			}
		}
		return products, nil
	}); err != nil {
		return order, fmt.Errorf("deduct stock: %w", err)
	}

	if discount > 0 {
		if _, err := UpdateNested(ctx, w.Aggregates, req.BusinessID, Promotions, func(coupons []domain.Coupon) ([]domain.Coupon, error) {
			for i := range coupons {
				if coupons[i].ID == coupon.ID {
					coupons[i].UsageCount++
				}
			}
			return coupons, nil
		}); err != nil {
			return order, fmt.Errorf("count coupon usage: %w", err)
		}
	}

	if req.CustomerID != "" {
		if _, err := w.Customers.Update(ctx, string(req.CustomerID), func(c *domain.Customer) error {
			c.LoyaltyPoints += business.LoyaltyProgram.PointsFor(order.Total, c.LoyaltyPoints)
			c.TotalSpent += order.Total
			return nil
		}); err != nil {
			return order, fmt.Errorf("award loyalty points: %w", err)
		}
	}

	for _, e := range low {
		if _, err := w.Notifier.Publish(ctx, e); err != nil {
			return order, err
		}
	}
	return order, nil
}

// GenerateFlow asks gen for a flow, embeds it in the business and publishes FlowGenerated.
func (w *Workspace) GenerateFlow(ctx context.Context, gen ContentGenerator, businessID domain.BusinessID, prompt string) (domain.Flow, error) {
	business, err := w.Businesses.Get(string(businessID))
	if err != nil {
		return domain.Flow{}, err
	}
	flow, err := gen.GenerateFlow(ctx, business, prompt)
	if err != nil {
		return domain.Flow{}, fmt.Errorf("generate flow: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if flow.ID == "" {
		flow.ID = domain.FlowID(domain.NewID(domain.EntityFlow))
	}
	if flow.Status == "" {
		flow.Status = "draft"
	}
	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = w.now().UTC()
	}
	if _, err := UpsertNested(ctx, w.Aggregates, businessID, Flows, flow); err != nil {
		return flow, err
	}
	_, err = w.Notifier.Publish(ctx, FlowGenerated{FlowID: flow.ID, Name: flow.Name})
	return flow, err
}

// DraftTicketReply stores a generated reply draft on the ticket and publishes
// TicketReplyDrafted.
func (w *Workspace) DraftTicketReply(ctx context.Context, gen ContentGenerator, ticketID domain.TicketID) (domain.Ticket, error) {
	ticket, err := w.Tickets.Get(string(ticketID))
	if err != nil {
		return domain.Ticket{}, err
	}
	business, err := w.Businesses.Get(string(ticket.BusinessID))
	if err != nil {
		return domain.Ticket{}, err
	}
	draft, err := gen.DraftReply(ctx, business, ticket)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("draft reply: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	updated, err := w.Tickets.Update(ctx, string(ticketID), func(t *domain.Ticket) error {
		t.DraftReply = draft
		if t.Status == domain.TicketOpen {
			t.Status = domain.TicketPending
		}
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	_, err = w.Notifier.Publish(ctx, TicketReplyDrafted{TicketID: updated.ID, Subject: updated.Subject})
	return updated, err
}

// ImportSite crawls url and embeds each page as a knowledge document. A page whose URL is
// already imported replaces the earlier document.
func (w *Workspace) ImportSite(ctx context.Context, crawler SiteCrawler, businessID domain.BusinessID, url string) ([]domain.KnowledgeDocument, error) {
	if _, err := w.Businesses.Get(string(businessID)); err != nil {
		return nil, err
	}
	pages, err := crawler.Crawl(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("crawl %s: %w", url, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now().UTC()
	var added []domain.KnowledgeDocument
	if _, err := UpdateNested(ctx, w.Aggregates, businessID, Documents, func(docs []domain.KnowledgeDocument) ([]domain.KnowledgeDocument, error) {
		byURL := make(map[string]int, len(docs))
		for i, d := range docs {
			if d.URL != "" {
				byURL[d.URL] = i
			}
		}
		// Pages without a URL never replace anything. A URL crawled twice lands once.
		var touched []int
		seen := make(map[int]struct{}, len(pages))
		for _, p := range pages {
			doc := domain.KnowledgeDocument{Title: p.Title, Source: domain.SourceCrawl, URL: p.URL, Content: p.Content, AddedAt: now}
			i, ok := byURL[p.URL]
			if ok && p.URL != "" {
				doc.ID = docs[i].ID
				docs[i] = doc
			} else {
				doc.ID = domain.DocumentID(domain.NewID(domain.EntityDocument))
				i = len(docs)
				if p.URL != "" {
					byURL[p.URL] = i
				}
				docs = append(docs, doc)
			}
			if _, dup := seen[i]; !dup {
				seen[i] = struct{}{}
				touched = append(touched, i)
			}
		}
		added = make([]domain.KnowledgeDocument, 0, len(touched))
		for _, i := range touched {
			added = append(added, docs[i])
		}
		return docs, nil
	}); err != nil {
		return nil, err
	}
	_, err = w.Notifier.Publish(ctx, ScrapeCompleted{URL: url, Documents: len(added)})
	return added, err
}

// CheckReferences reports identifiers that point at missing records. Each one is logged
// as a warning; nothing is repaired.
func (w *Workspace) CheckReferences() []domain.DanglingReference {
	refs := domain.ValidateReferences(domain.ReferenceSet{
		Businesses:   w.Businesses.List(),
		Customers:    w.Customers.List(),
		Orders:       w.Orders.List(),
		Transactions: w.Transactions.List(),
		Tickets:      w.Tickets.List(),
		Tasks:        w.Tasks.List(),
		Campaigns:    w.Campaigns.List(),
		Appointments: w.Appointments.List(),
		MessageLogs:  w.MessageLogs.List(),
		Webhooks:     w.Webhooks.List(),
	})
	for _, r := range refs {
		w.log.WithFields(logrus.Fields{
			"entity": r.From, "id": r.FromID, "field": r.Field, "target": r.Target, "target_id": r.TargetID,
		}).Warn("dangling reference")
	}
	return refs
}
