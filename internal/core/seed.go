package core

import (
	"bizstate/pkg/domain"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Seed is the value every collection falls back to when its key is absent.
type Seed struct {
	ActiveBusiness domain.BusinessID        `yaml:"active_business_id"`
	Businesses     []domain.BusinessProfile `yaml:"businesses"`
	Customers      []domain.Customer        `yaml:"customers"`
	Orders         []domain.Order           `yaml:"orders"`
	Transactions   []domain.Transaction     `yaml:"transactions"`
	Tickets        []domain.Ticket          `yaml:"tickets"`
	Notifications  []domain.Notification    `yaml:"notifications"`
	Tasks          []domain.Task            `yaml:"tasks"`
	Campaigns      []domain.Campaign        `yaml:"campaigns"`
	Appointments   []domain.Appointment     `yaml:"appointments"`
	MessageLogs    []domain.MessageLog      `yaml:"message_logs"`
	Webhooks       []domain.Webhook         `yaml:"webhooks"`
}

// ActiveFallback is the active pointer used when none is stored.
func (s Seed) ActiveFallback() domain.BusinessID {
	if s.ActiveBusiness != "" || len(s.Businesses) == 0 {
		return s.ActiveBusiness
	}
	return s.Businesses[0].ID
}

// LoadSeedFile reads a seed from a YAML document.
func LoadSeedFile(path string) (Seed, error) {
	// #nosec G304 -- seed path is operator supplied
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed %s: %w", path, err)
	}
	for _, b := range s.Businesses {
		if b.ID == "" {
			return Seed{}, fmt.Errorf("seed %s: %w", path, domain.MissingIDError{Entity: domain.EntityBusiness})
		}
		if err := b.Validate(); err != nil {
			return Seed{}, fmt.Errorf("seed %s: business %s: %w", path, b.ID, err)
		}
	}
	return s, nil
}

var seedEpoch = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

// DefaultSeed returns the first-run data set: two businesses with a small catalog,
// coupons, loyalty tiers and FAQs, a few customers, a task and a welcome notification.
func DefaultSeed() Seed {
	return Seed{
		ActiveBusiness: "biz_1",
		Businesses: []domain.BusinessProfile{
			{
				ID:          "biz_1",
				Name:        "Sunrise Bakery",
				Industry:    "food",
				Description: "Neighbourhood bakery with fresh bread and pastries every morning.",
				Email:       "hello@sunrisebakery.example",
				Phone:       "+1 555 0100",
				Currency:    "USD",
				Timezone:    "America/New_York",
				Products: []domain.Product{
					{ID: "prd_1", Name: "Sourdough Loaf", Category: "bread", Price: 8.5, Stock: 24, Active: true},
					{ID: "prd_2", Name: "Butter Croissant", Category: "pastry", Price: 3.75, Stock: 40, Active: true},
					{ID: "prd_3", Name: "Celebration Cake", Category: "cake", Price: 42, Stock: 3, Active: true},
				},
				Flows: []domain.Flow{},
				Promotions: []domain.Coupon{
					{ID: "cpn_1", Code: "WELCOME10", DiscountType: domain.DiscountPercent, Value: 10, Active: true},
					{ID: "cpn_2", Code: "FIVEOFF", DiscountType: domain.DiscountFixed, Value: 5, Active: false},
				},
				LoyaltyProgram: domain.LoyaltyProgram{
					Enabled:       true,
					PointsPerUnit: 1,
					Tiers: []domain.LoyaltyTier{
						{ID: "tier_1", Name: "Bronze", MinPoints: 0, Multiplier: 1},
						{ID: "tier_2", Name: "Silver", MinPoints: 200, Multiplier: 1.25, Perks: []string{"free coffee on birthdays"}},
						{ID: "tier_3", Name: "Gold", MinPoints: 500, Multiplier: 1.5, Perks: []string{"priority pre-orders"}},
					},
				},
				Documents: []domain.KnowledgeDocument{},
				FAQs: []domain.FAQOverride{
					{ID: "faq_1", Question: "What time do you open?", Answer: "Every day from 7am to 3pm."},
					{ID: "faq_2", Question: "Do you bake gluten free bread?", Answer: "Yes, on Fridays."},
				},
				Corrections: []domain.TrainingCorrection{},
				RoutingRules: []domain.RoutingRule{
					{ID: "rte_1", Keyword: "catering", Department: "sales", Priority: 1},
				},
				Integrations: domain.IntegrationSettings{WhatsApp: true, Email: true},
				AIConfig: domain.AIConfig{
					Persona:          "friendly baker",
					Tone:             "warm",
					Language:         "en",
					Greeting:         "Hi! What can we bake for you today?",
					Temperature:      0.7,
					AutoReply:        true,
					HandoffThreshold: 0.4,
				},
				CreatedAt: seedEpoch,
			},
			{
				ID:          "biz_2",
				Name:        "Northside Fitness",
				Industry:    "fitness",
				Description: "Small gym offering classes and personal training.",
				Email:       "team@northside.example",
				Currency:    "USD",
				Timezone:    "America/Chicago",
				Products: []domain.Product{
					{ID: "prd_1", Name: "Monthly Membership", Category: "membership", Price: 49, Stock: 100, Active: true},
					{ID: "prd_2", Name: "Personal Training Session", Category: "service", Price: 65, Stock: 20, Active: true},
				},
				Flows: []domain.Flow{},
				Promotions: []domain.Coupon{
					{ID: "cpn_1", Code: "NEWYEAR", DiscountType: domain.DiscountPercent, Value: 20, Active: true},
				},
				LoyaltyProgram: domain.LoyaltyProgram{
					Enabled:       false,
					PointsPerUnit: 2,
					Tiers:         []domain.LoyaltyTier{{ID: "tier_1", Name: "Member", MinPoints: 0, Multiplier: 1}},
				},
				Documents: []domain.KnowledgeDocument{},
				FAQs: []domain.FAQOverride{
					{ID: "faq_1", Question: "Can I freeze my membership?", Answer: "Yes, for up to two months per year."},
				},
				Corrections:  []domain.TrainingCorrection{},
				RoutingRules: []domain.RoutingRule{},
				Integrations: domain.IntegrationSettings{Instagram: true, Stripe: true},
				AIConfig:     domain.AIConfig{Persona: "coach", Tone: "energetic", Language: "en", Temperature: 0.5, HandoffThreshold: 0.5},
				CreatedAt:    seedEpoch,
			},
		},
		Customers: []domain.Customer{
			{ID: "cus_1", BusinessID: "biz_1", Name: "Ada Park", Email: "ada@example.com", Tags: []string{"regular"}, LoyaltyPoints: 120, TotalSpent: 118.5, CreatedAt: seedEpoch},
			{ID: "cus_2", BusinessID: "biz_1", Name: "Luis Romero", Email: "luis@example.com", CreatedAt: seedEpoch},
			{ID: "cus_3", BusinessID: "biz_2", Name: "Mei Chen", Email: "mei@example.com", Tags: []string{"trial"}, CreatedAt: seedEpoch},
		},
		Orders:       []domain.Order{},
		Transactions: []domain.Transaction{},
		Tickets: []domain.Ticket{
			{ID: "tkt_1", BusinessID: "biz_1", CustomerID: "cus_2", Subject: "Birthday cake order", Body: "Can I order a cake for Saturday?", Status: domain.TicketOpen, Priority: "normal", CreatedAt: seedEpoch},
		},
		Notifications: []domain.Notification{
			{ID: "ntf_1", Title: "Welcome to your workspace", Message: "Your business profile is ready.", Kind: domain.NotificationInfo, CreatedAt: seedEpoch},
		},
		Tasks: []domain.Task{
			{ID: "tsk_1", BusinessID: "biz_1", Title: "Connect your payment provider", CreatedAt: seedEpoch},
		},
		Campaigns:    []domain.Campaign{},
		Appointments: []domain.Appointment{},
		MessageLogs:  []domain.MessageLog{},
		Webhooks:     []domain.Webhook{},
	}
}
