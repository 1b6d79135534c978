package domain

import "time"

// Subscription tiers.
const (
	TierFree = "free"
	TierPaid = "paid"
)

// User is the account record returned by auth and /api/users/me.
// Copies kept on disk are a display cache only.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	SubscriptionTier string    `json:"subscription_tier,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
