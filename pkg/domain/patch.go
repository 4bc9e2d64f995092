package domain

// Patch types carry only the fields a caller intends to change. A nil field leaves the
// existing value untouched. Apply functions are pure: they return a new value and never
// mutate their receiver.

// BusinessDetailsPatch updates descriptive fields of a BusinessProfile.
type BusinessDetailsPatch struct {
	Name        *string `json:"name,omitempty" yaml:"name,omitempty"`
	Industry    *string `json:"industry,omitempty" yaml:"industry,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	Website     *string `json:"website,omitempty" yaml:"website,omitempty"`
	Email       *string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone       *string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address     *string `json:"address,omitempty" yaml:"address,omitempty"`
	Currency    *string `json:"currency,omitempty" yaml:"currency,omitempty"`
	Timezone    *string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty" yaml:"logo_url,omitempty"`
}

// ApplyDetails returns b with the non-nil fields of p applied.
func (b BusinessProfile) ApplyDetails(p BusinessDetailsPatch) BusinessProfile {
	out := b.Clone()
	setString(&out.Name, p.Name)
	setString(&out.Industry, p.Industry)
	setString(&out.Description, p.Description)
	setString(&out.Website, p.Website)
	setString(&out.Email, p.Email)
	setString(&out.Phone, p.Phone)
	setString(&out.Address, p.Address)
	setString(&out.Currency, p.Currency)
	setString(&out.Timezone, p.Timezone)
	setString(&out.LogoURL, p.LogoURL)
	return out
}

// AIConfigPatch updates assistant configuration.
type AIConfigPatch struct {
	Persona          *string  `json:"persona,omitempty" yaml:"persona,omitempty"`
	Tone             *string  `json:"tone,omitempty" yaml:"tone,omitempty"`
	Language         *string  `json:"language,omitempty" yaml:"language,omitempty"`
	Greeting         *string  `json:"greeting,omitempty" yaml:"greeting,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	AutoReply        *bool    `json:"auto_reply,omitempty" yaml:"auto_reply,omitempty"`
	HandoffThreshold *float64 `json:"handoff_threshold,omitempty" yaml:"handoff_threshold,omitempty"`
}

// Apply returns c with the non-nil fields of p applied.
func (c AIConfig) Apply(p AIConfigPatch) AIConfig {
	setString(&c.Persona, p.Persona)
	setString(&c.Tone, p.Tone)
	setString(&c.Language, p.Language)
	setString(&c.Greeting, p.Greeting)
	if p.Temperature != nil {
		c.Temperature = *p.Temperature
	}
	if p.AutoReply != nil {
		c.AutoReply = *p.AutoReply
	}
	if p.HandoffThreshold != nil {
		c.HandoffThreshold = *p.HandoffThreshold
	}
	return c
}

// IntegrationPatch toggles individual channels.
type IntegrationPatch struct {
	WhatsApp  *bool `json:"whatsapp,omitempty" yaml:"whatsapp,omitempty"`
	Instagram *bool `json:"instagram,omitempty" yaml:"instagram,omitempty"`
	Messenger *bool `json:"messenger,omitempty" yaml:"messenger,omitempty"`
	Email     *bool `json:"email,omitempty" yaml:"email,omitempty"`
	Shopify   *bool `json:"shopify,omitempty" yaml:"shopify,omitempty"`
	Stripe    *bool `json:"stripe,omitempty" yaml:"stripe,omitempty"`
}

// Apply returns s with the non-nil toggles of p applied.
func (s IntegrationSettings) Apply(p IntegrationPatch) IntegrationSettings {
	setBool(&s.WhatsApp, p.WhatsApp)
	setBool(&s.Instagram, p.Instagram)
	setBool(&s.Messenger, p.Messenger)
	setBool(&s.Email, p.Email)
	setBool(&s.Shopify, p.Shopify)
	setBool(&s.Stripe, p.Stripe)
	return s
}

// LoyaltySettingsPatch updates program settings. Tiers are edited through the nested
// collection accessor, not through this patch.
type LoyaltySettingsPatch struct {
	Enabled       *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	PointsPerUnit *float64 `json:"points_per_unit,omitempty" yaml:"points_per_unit,omitempty"`
}

// Apply returns p with the non-nil fields of patch applied. The tier slice is copied.
func (p LoyaltyProgram) Apply(patch LoyaltySettingsPatch) LoyaltyProgram {
	setBool(&p.Enabled, patch.Enabled)
	if patch.PointsPerUnit != nil {
		p.PointsPerUnit = *patch.PointsPerUnit
	}
	p.Tiers = cloneSlice(p.Tiers)
	return p
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
