package domain

import "time"

// BusinessProfile is the aggregate root. Its nested collections are not independent
// stores: they are persisted as part of the profile's single document and are only
// rewritten by replacing the whole profile.
type BusinessProfile struct {
	ID          BusinessID `json:"id" yaml:"id" validate:"required"`
	Name        string     `json:"name" yaml:"name"`
	Industry    string     `json:"industry,omitempty" yaml:"industry,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Website     string     `json:"website,omitempty" yaml:"website,omitempty"`
	Email       string     `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Phone       string     `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address     string     `json:"address,omitempty" yaml:"address,omitempty"`
	Currency    string     `json:"currency" yaml:"currency"`
	Timezone    string     `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	LogoURL     string     `json:"logo_url,omitempty" yaml:"logo_url,omitempty"`

	Products       []Product            `json:"products" yaml:"products"`
	Flows          []Flow               `json:"flows" yaml:"flows"`
	Promotions     []Coupon             `json:"promotions" yaml:"promotions"`
	LoyaltyProgram LoyaltyProgram       `json:"loyalty_program" yaml:"loyalty_program"`
	Documents      []KnowledgeDocument  `json:"documents" yaml:"documents"`
	FAQs           []FAQOverride        `json:"faqs" yaml:"faqs"`
	Corrections    []TrainingCorrection `json:"corrections" yaml:"corrections"`
	RoutingRules   []RoutingRule        `json:"routing_rules" yaml:"routing_rules"`
	Integrations   IntegrationSettings  `json:"integrations" yaml:"integrations"`
	AIConfig       AIConfig             `json:"ai_config" yaml:"ai_config"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (b BusinessProfile) EntityID() string { return string(b.ID) }

// Product is a catalog item sold by the business.
type Product struct {
	ID          ProductID `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string    `json:"category,omitempty" yaml:"category,omitempty"`
	Price       float64   `json:"price" yaml:"price"`
	Stock       int       `json:"stock" yaml:"stock"`
	Active      bool      `json:"active" yaml:"active"`
}

// EntityID implements Entity.
func (p Product) EntityID() string { return string(p.ID) }

// FlowComponent is one widget on a flow screen.
type FlowComponent struct {
	Type  string `json:"type" yaml:"type"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// FlowScreen is one step of a conversational flow.
type FlowScreen struct {
	ID         string          `json:"id" yaml:"id"`
	Title      string          `json:"title" yaml:"title"`
	Components []FlowComponent `json:"components" yaml:"components"`
}

// Flow is a conversational flow definition, usually produced by the content generator.
type Flow struct {
	ID        FlowID       `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	Trigger   string       `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Status    string       `json:"status" yaml:"status"`
	Screens   []FlowScreen `json:"screens" yaml:"screens"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
}

// EntityID implements Entity.
func (f Flow) EntityID() string { return string(f.ID) }

// DiscountType describes how a coupon value is applied.
type DiscountType string

// Discount types.
const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// Coupon is a discount code.
type Coupon struct {
	ID           CouponID     `json:"id" yaml:"id"`
	Code         string       `json:"code" yaml:"code"`
	DiscountType DiscountType `json:"discount_type" yaml:"discount_type"`
	Value        float64      `json:"value" yaml:"value"`
	Active       bool         `json:"active" yaml:"active"`
	UsageCount   int          `json:"usage_count" yaml:"usage_count"`
	ExpiresAt    *time.Time   `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// EntityID implements Entity.
func (c Coupon) EntityID() string { return string(c.ID) }

// Discount returns the amount the coupon takes off subtotal at time now. Inactive or
// expired coupons discount nothing; a discount never exceeds the subtotal.
func (c Coupon) Discount(subtotal float64, now time.Time) float64 {
	if !c.Active || (c.ExpiresAt != nil && now.After(*c.ExpiresAt)) {
		return 0
	}
	var d float64
	switch c.DiscountType {
	case DiscountPercent:
		d = subtotal * c.Value / 100
	case DiscountFixed:
		d = c.Value
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}

// LoyaltyTier is one level of the loyalty program.
type LoyaltyTier struct {
	ID         TierID   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	MinPoints  int      `json:"min_points" yaml:"min_points"`
	Multiplier float64  `json:"multiplier" yaml:"multiplier"`
	Perks      []string `json:"perks,omitempty" yaml:"perks,omitempty"`
}

// EntityID implements Entity.
func (t LoyaltyTier) EntityID() string { return string(t.ID) }

// LoyaltyProgram holds program settings and its ordered tiers.
type LoyaltyProgram struct {
	Enabled       bool          `json:"enabled" yaml:"enabled"`
	PointsPerUnit float64       `json:"points_per_unit" yaml:"points_per_unit"`
	Tiers         []LoyaltyTier `json:"tiers" yaml:"tiers"`
}

// TierFor returns the highest tier whose threshold points reaches. Tiers are kept in the
// order the owner defined them; the search does not assume they are sorted.
func (p LoyaltyProgram) TierFor(points int) (LoyaltyTier, bool) {
	var best LoyaltyTier
	found := false
	for _, t := range p.Tiers {
		if points >= t.MinPoints && (!found || t.MinPoints > best.MinPoints) {
			best, found = t, true
		}
	}
	return best, found
}

// PointsFor returns the points earned for spending amount at the given balance.
func (p LoyaltyProgram) PointsFor(amount float64, balance int) int {
	if !p.Enabled || amount <= 0 {
		return 0
	}
	multiplier := 1.0
	if tier, ok := p.TierFor(balance); ok && tier.Multiplier > 0 {
		multiplier = tier.Multiplier
	}
	return int(amount * p.PointsPerUnit * multiplier)
}

// DocumentSource records where a knowledge document came from.
type DocumentSource string

// Document sources.
const (
	SourceUpload DocumentSource = "upload"
	SourceCrawl  DocumentSource = "crawl"
)

// KnowledgeDocument is reference material for the assistant.
type KnowledgeDocument struct {
	ID      DocumentID     `json:"id" yaml:"id"`
	Title   string         `json:"title" yaml:"title"`
	Source  DocumentSource `json:"source" yaml:"source"`
	URL     string         `json:"url,omitempty" yaml:"url,omitempty"`
	Content string         `json:"content" yaml:"content"`
	AddedAt time.Time      `json:"added_at" yaml:"added_at"`
}

// EntityID implements Entity.
func (d KnowledgeDocument) EntityID() string { return string(d.ID) }

// FAQOverride pins an answer to a question.
type FAQOverride struct {
	ID       FAQID  `json:"id" yaml:"id"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// EntityID implements Entity.
func (f FAQOverride) EntityID() string { return string(f.ID) }

// TrainingCorrection is an example of a bad answer and its correction.
type TrainingCorrection struct {
	ID              CorrectionID `json:"id" yaml:"id"`
	Prompt          string       `json:"prompt" yaml:"prompt"`
	OriginalAnswer  string       `json:"original_answer" yaml:"original_answer"`
	CorrectedAnswer string       `json:"corrected_answer" yaml:"corrected_answer"`
}

// EntityID implements Entity.
func (c TrainingCorrection) EntityID() string { return string(c.ID) }

// RoutingRule sends matching conversations to a department.
type RoutingRule struct {
	ID         RoutingRuleID `json:"id" yaml:"id"`
	Keyword    string        `json:"keyword" yaml:"keyword"`
	Department string        `json:"department" yaml:"department"`
	Priority   int           `json:"priority" yaml:"priority"`
}

// EntityID implements Entity.
func (r RoutingRule) EntityID() string { return string(r.ID) }

// IntegrationSettings toggles external channels.
type IntegrationSettings struct {
	WhatsApp  bool `json:"whatsapp" yaml:"whatsapp"`
	Instagram bool `json:"instagram" yaml:"instagram"`
	Messenger bool `json:"messenger" yaml:"messenger"`
	Email     bool `json:"email" yaml:"email"`
	Shopify   bool `json:"shopify" yaml:"shopify"`
	Stripe    bool `json:"stripe" yaml:"stripe"`
}

// AIConfig configures the assistant for the business.
type AIConfig struct {
	Persona          string  `json:"persona" yaml:"persona"`
	Tone             string  `json:"tone" yaml:"tone"`
	Language         string  `json:"language" yaml:"language"`
	Greeting         string  `json:"greeting,omitempty" yaml:"greeting,omitempty"`
	Temperature      float64 `json:"temperature" yaml:"temperature"`
	AutoReply        bool    `json:"auto_reply" yaml:"auto_reply"`
	HandoffThreshold float64 `json:"handoff_threshold" yaml:"handoff_threshold"`
}

// Validate reports the first nested collection containing an empty or repeated
// identifier.
func (b BusinessProfile) Validate() error {
	if err := uniqueIDs(EntityProduct, b.Products); err != nil {
		return err
	}
	if err := uniqueIDs(EntityFlow, b.Flows); err != nil {
		return err
	}
	if err := uniqueIDs(EntityCoupon, b.Promotions); err != nil {
		return err
	}
	if err := uniqueIDs(EntityLoyaltyTier, b.LoyaltyProgram.Tiers); err != nil {
		return err
	}
	if err := uniqueIDs(EntityDocument, b.Documents); err != nil {
		return err
	}
	if err := uniqueIDs(EntityFAQ, b.FAQs); err != nil {
		return err
	}
	if err := uniqueIDs(EntityCorrection, b.Corrections); err != nil {
		return err
	}
	return uniqueIDs(EntityRoutingRule, b.RoutingRules)
}

func uniqueIDs[E Entity](entity EntityType, items []E) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		id := item.EntityID()
		if id == "" {
			return MissingIDError{Entity: entity}
		}
		if _, dup := seen[id]; dup {
			return DuplicateIDError{Entity: entity, ID: id}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy of the profile so nested arrays can be transformed without
// touching a cached document.
func (b BusinessProfile) Clone() BusinessProfile {
	cp := b
	cp.Products = cloneSlice(b.Products)
	cp.Flows = nil
	if b.Flows != nil {
		cp.Flows = make([]Flow, len(b.Flows))
		for i, f := range b.Flows {
			cp.Flows[i] = f.Clone()
		}
	}
	cp.Promotions = nil
	if b.Promotions != nil {
		cp.Promotions = make([]Coupon, len(b.Promotions))
		for i, c := range b.Promotions {
			cp.Promotions[i] = c
			if c.ExpiresAt != nil {
				at := *c.ExpiresAt
				cp.Promotions[i].ExpiresAt = &at
			}
		}
	}
	cp.LoyaltyProgram.Tiers = nil
	if b.LoyaltyProgram.Tiers != nil {
		cp.LoyaltyProgram.Tiers = make([]LoyaltyTier, len(b.LoyaltyProgram.Tiers))
		for i, t := range b.LoyaltyProgram.Tiers {
			cp.LoyaltyProgram.Tiers[i] = t
			cp.LoyaltyProgram.Tiers[i].Perks = cloneStrings(t.Perks)
		}
	}
	cp.Documents = cloneSlice(b.Documents)
	cp.FAQs = cloneSlice(b.FAQs)
	cp.Corrections = cloneSlice(b.Corrections)
	cp.RoutingRules = cloneSlice(b.RoutingRules)
	return cp
}

// Clone returns a copy of the flow with its own screens.
func (f Flow) Clone() Flow {
	cp := f
	if f.Screens != nil {
		cp.Screens = make([]FlowScreen, len(f.Screens))
		for i, s := range f.Screens {
			cp.Screens[i] = s
			cp.Screens[i].Components = cloneSlice(s.Components)
		}
	}
	return cp
}

// Product returns the product with id.
func (b BusinessProfile) Product(id ProductID) (Product, bool) {
	for _, p := range b.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// CouponByCode returns the coupon with the given code.
func (b BusinessProfile) CouponByCode(code string) (Coupon, bool) {
	for _, c := range b.Promotions {
		if c.Code == code {
			return c, true
		}
	}
	return Coupon{}, false
}

func cloneSlice[E any](in []E) []E {
	if in == nil {
		return nil
	}
	return append([]E(nil), in...)
}
