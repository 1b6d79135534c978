package domain

// SubscriptionStatus is the backend's authoritative view of tier and usage.
// The client only displays these numbers; it never derives them.
type SubscriptionStatus struct {
	SubscriptionTier     string `json:"subscription_tier"`
	SpellsUsed           int    `json:"spells_used"`
	SpellLimit           int    `json:"spell_limit"`
	SpellsRemaining      int    `json:"spells_remaining"`
	TotalSpellsGenerated int    `json:"total_spells_generated"`
}

// Paid reports whether the status is for a paid subscription.
func (s SubscriptionStatus) Paid() bool {
	return s.SubscriptionTier == TierPaid
}
