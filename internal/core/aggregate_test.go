package core

import (
	"bizstate/pkg/domain"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededAggregates(t *testing.T) (*Aggregates, *EntityStore[domain.BusinessProfile]) {
	t.Helper()
	opts, _ := testOptions(t)
	st := LoadStore(context.Background(), newFakeBackend(nil), collection(domain.EntityBusiness), DefaultSeed().Businesses, opts)
	return NewAggregates(st), st
}

func TestUpdateNestedIsolatesBusinesses(t *testing.T) {
	ctx := context.Background()
	agg, st := seededAggregates(t)
	before, err := st.Get("biz_2")
	require.NoError(t, err)

	// both businesses carry a product prd_1; only biz_1 changes
	_, err = UpsertNested(ctx, agg, "biz_1", Products, domain.Product{ID: "prd_1", Name: "Rye Loaf", Price: 9, Stock: 10, Active: true})
	require.NoError(t, err)

	products, err := Nested(agg, "biz_1", Products)
	require.NoError(t, err)
	assert.Equal(t, "Rye Loaf", products[0].Name)
	assert.Len(t, products, 3)

	after, err := st.Get("biz_2")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpsertAndRemoveNested(t *testing.T) {
	ctx := context.Background()
	agg, _ := seededAggregates(t)

	b, err := UpsertNested(ctx, agg, "biz_1", FAQs, domain.FAQOverride{ID: "faq_9", Question: "Parking?", Answer: "Behind the shop."})
	require.NoError(t, err)
	assert.Equal(t, []string{"faq_1", "faq_2", "faq_9"}, ids(b.FAQs))

	b, err = RemoveNested(ctx, agg, "biz_1", FAQs, "faq_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"faq_2", "faq_9"}, ids(b.FAQs))

	b, err = RemoveNested(ctx, agg, "biz_1", FAQs, "faq_missing")
	require.NoError(t, err)
	assert.Equal(t, []string{"faq_2", "faq_9"}, ids(b.FAQs))

	tiers, err := Nested(agg, "biz_1", LoyaltyTiers)
	require.NoError(t, err)
	assert.Equal(t, []string{"tier_1", "tier_2", "tier_3"}, ids(tiers))
}

func TestUpdateNestedErrors(t *testing.T) {
	ctx := context.Background()
	agg, st := seededAggregates(t)

	_, err := Nested(agg, "biz_404", Products)
	var nf domain.ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.EntityBusiness, nf.Entity)

	_, err = UpsertNested(ctx, agg, "biz_404", Flows, domain.Flow{ID: "flw_1"})
	require.ErrorAs(t, err, &nf)

	before, _ := st.Get("biz_1")
	boom := errors.New("rejected")
	_, err = UpdateNested(ctx, agg, "biz_1", Promotions, func([]domain.Coupon) ([]domain.Coupon, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	after, _ := st.Get("biz_1")
	assert.Equal(t, before, after)

	_, err = UpdateNested(ctx, agg, "biz_1", Products, func(ps []domain.Product) ([]domain.Product, error) {
		return append(ps, domain.Product{ID: "prd_1"}), nil
	})
	require.ErrorIs(t, err, domain.ErrDuplicateID)
	products, _ := Nested(agg, "biz_1", Products)
	assert.Len(t, products, 3)
}

func TestProfilePatches(t *testing.T) {
	ctx := context.Background()
	agg, st := seededAggregates(t)

	name := "Sunrise Bakery & Cafe"
	b, err := agg.ApplyDetails(ctx, "biz_1", domain.BusinessDetailsPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, b.Name)
	assert.Equal(t, "food", b.Industry)
	assert.Len(t, b.Products, 3)

	tone := "playful"
	b, err = agg.ApplyAIConfig(ctx, "biz_1", domain.AIConfigPatch{Tone: &tone})
	require.NoError(t, err)
	assert.Equal(t, "playful", b.AIConfig.Tone)
	assert.Equal(t, "friendly baker", b.AIConfig.Persona)

	off := false
	b, err = agg.ApplyIntegrations(ctx, "biz_1", domain.IntegrationPatch{WhatsApp: &off})
	require.NoError(t, err)
	assert.False(t, b.Integrations.WhatsApp)
	assert.True(t, b.Integrations.Email)

	ppu := 2.0
	b, err = agg.ApplyLoyaltySettings(ctx, "biz_1", domain.LoyaltySettingsPatch{PointsPerUnit: &ppu})
	require.NoError(t, err)
	assert.Equal(t, 2.0, b.LoyaltyProgram.PointsPerUnit)
	assert.Len(t, b.LoyaltyProgram.Tiers, 3)

	stored, _ := st.Get("biz_1")
	assert.Equal(t, b, stored)

	bad := "not-an-email"
	_, err = agg.ApplyDetails(ctx, "biz_1", domain.BusinessDetailsPatch{Email: &bad})
	require.Error(t, err)
	stored, _ = st.Get("biz_1")
	assert.Equal(t, "hello@sunrisebakery.example", stored.Email)
}
