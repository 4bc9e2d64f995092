package core

import (
	"bizstate/pkg/domain"
	"context"
)

// Selector names one nested collection of a BusinessProfile.
type Selector[E domain.Entity] struct {
	Entity domain.EntityType
	get    func(domain.BusinessProfile) []E
	set    func(*domain.BusinessProfile, []E)
}

// Nested collection selectors.
var (
	Products = Selector[domain.Product]{Entity: domain.EntityProduct,
		get: func(b domain.BusinessProfile) []domain.Product { return b.Products },
		set: func(b *domain.BusinessProfile, v []domain.Product) { b.Products = v }}
	Flows = Selector[domain.Flow]{Entity: domain.EntityFlow,
		get: func(b domain.BusinessProfile) []domain.Flow { return b.Flows },
		set: func(b *domain.BusinessProfile, v []domain.Flow) { b.Flows = v }}
	Promotions = Selector[domain.Coupon]{Entity: domain.EntityCoupon,
		get: func(b domain.BusinessProfile) []domain.Coupon { return b.Promotions },
		set: func(b *domain.BusinessProfile, v []domain.Coupon) { b.Promotions = v }}
	LoyaltyTiers = Selector[domain.LoyaltyTier]{Entity: domain.EntityLoyaltyTier,
		get: func(b domain.BusinessProfile) []domain.LoyaltyTier { return b.LoyaltyProgram.Tiers },
		set: func(b *domain.BusinessProfile, v []domain.LoyaltyTier) { b.LoyaltyProgram.Tiers = v }}
	Documents = Selector[domain.KnowledgeDocument]{Entity: domain.EntityDocument,
		get: func(b domain.BusinessProfile) []domain.KnowledgeDocument { return b.Documents },
		set: func(b *domain.BusinessProfile, v []domain.KnowledgeDocument) { b.Documents = v }}
	FAQs = Selector[domain.FAQOverride]{Entity: domain.EntityFAQ,
		get: func(b domain.BusinessProfile) []domain.FAQOverride { return b.FAQs },
		set: func(b *domain.BusinessProfile, v []domain.FAQOverride) { b.FAQs = v }}
	Corrections = Selector[domain.TrainingCorrection]{Entity: domain.EntityCorrection,
		get: func(b domain.BusinessProfile) []domain.TrainingCorrection { return b.Corrections },
		set: func(b *domain.BusinessProfile, v []domain.TrainingCorrection) { b.Corrections = v }}
	RoutingRules = Selector[domain.RoutingRule]{Entity: domain.EntityRoutingRule,
		get: func(b domain.BusinessProfile) []domain.RoutingRule { return b.RoutingRules },
		set: func(b *domain.BusinessProfile, v []domain.RoutingRule) { b.RoutingRules = v }}
)

// Aggregates edits the contents of business profiles. Every change replaces the whole
// profile through the business store, so profile validation always runs and a change to
// one business never touches another.
type Aggregates struct {
	businesses *EntityStore[domain.BusinessProfile]
}

// NewAggregates returns an accessor over businesses.
func NewAggregates(businesses *EntityStore[domain.BusinessProfile]) *Aggregates {
	return &Aggregates{businesses: businesses}
}

// UpdateProfile applies fn to a copy of the profile and upserts the result.
func (a *Aggregates) UpdateProfile(ctx context.Context, id domain.BusinessID, fn func(*domain.BusinessProfile) error) (domain.BusinessProfile, error) {
	return a.businesses.Update(ctx, string(id), fn)
}

// ApplyDetails merges descriptive fields into the profile.
func (a *Aggregates) ApplyDetails(ctx context.Context, id domain.BusinessID, p domain.BusinessDetailsPatch) (domain.BusinessProfile, error) {
	return a.UpdateProfile(ctx, id, func(b *domain.BusinessProfile) error {
		*b = b.ApplyDetails(p)
		return nil
	})
}

// ApplyAIConfig merges assistant settings into the profile.
func (a *Aggregates) ApplyAIConfig(ctx context.Context, id domain.BusinessID, p domain.AIConfigPatch) (domain.BusinessProfile, error) {
	return a.UpdateProfile(ctx, id, func(b *domain.BusinessProfile) error {
		b.AIConfig = b.AIConfig.Apply(p)
		return nil
	})
}

// ApplyIntegrations toggles channels on the profile.
func (a *Aggregates) ApplyIntegrations(ctx context.Context, id domain.BusinessID, p domain.IntegrationPatch) (domain.BusinessProfile, error) {
	return a.UpdateProfile(ctx, id, func(b *domain.BusinessProfile) error {
		b.Integrations = b.Integrations.Apply(p)
		return nil
	})
}

// ApplyLoyaltySettings merges loyalty program settings into the profile.
func (a *Aggregates) ApplyLoyaltySettings(ctx context.Context, id domain.BusinessID, p domain.LoyaltySettingsPatch) (domain.BusinessProfile, error) {
	return a.UpdateProfile(ctx, id, func(b *domain.BusinessProfile) error {
		b.LoyaltyProgram = b.LoyaltyProgram.Apply(p)
		return nil
	})
}

// Nested returns a copy of the selected collection of one business.
func Nested[E domain.Entity](a *Aggregates, businessID domain.BusinessID, sel Selector[E]) ([]E, error) {
	b, err := a.businesses.Get(string(businessID))
	if err != nil {
		return nil, err
	}
	return sel.get(b), nil
}

// UpdateNested replaces the selected collection of one business with transform's result
// and writes the whole profile back.
func UpdateNested[E domain.Entity](ctx context.Context, a *Aggregates, businessID domain.BusinessID, sel Selector[E], transform func([]E) ([]E, error)) (domain.BusinessProfile, error) {
	return a.UpdateProfile(ctx, businessID, func(b *domain.BusinessProfile) error {
		next, err := transform(sel.get(*b))
		if err != nil {
			return err
		}
		sel.set(b, next)
		return nil
	})
}

// UpsertNested replaces the nested item with the same identifier in place or appends it.
func UpsertNested[E domain.Entity](ctx context.Context, a *Aggregates, businessID domain.BusinessID, sel Selector[E], item E) (domain.BusinessProfile, error) {
	return UpdateNested(ctx, a, businessID, sel, func(items []E) ([]E, error) {
		for i := range items {
			if items[i].EntityID() == item.EntityID() {
				items[i] = item
				return items, nil
			}
		}
		return append(items, item), nil
	})
}

// RemoveNested filters the nested item with itemID out of the collection. A missing id
// leaves the collection unchanged.
func RemoveNested[E domain.Entity](ctx context.Context, a *Aggregates, businessID domain.BusinessID, sel Selector[E], itemID string) (domain.BusinessProfile, error) {
	return UpdateNested(ctx, a, businessID, sel, func(items []E) ([]E, error) {
		out := make([]E, 0, len(items))
		for _, it := range items {
			if it.EntityID() != itemID {
				out = append(out, it)
			}
		}
		return out, nil
	})
}
