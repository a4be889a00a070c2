package models

import "time"

// Subscription tiers.
const (
	TierFree    = "free"
	TierPremium = "premium"
)

// Subscription holds the billing tier of a user. Every user has exactly
// one row, created as FREE at signup.
type Subscription struct {
	ID        int64
	UserID    int64
	Tier      string // free or premium
	StartsAt  *time.Time
	ExpiresAt *time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
