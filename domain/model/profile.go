package model

import "time"

// Subscription tiers.
const (
	TierFree    = "free"
	TierPremium = "premium"
	TierPro     = "pro"
)

// ReferralMilestone is the number of referrals that completes one progress cycle.
const ReferralMilestone = 10

// Profile is the per user account record holding the credit balance.
type Profile struct {
	ID               string    `json:"id"`
	Email            *string   `json:"email,omitempty"`
	FullName         *string   `json:"full_name,omitempty"`
	Credits          int       `json:"credits"`
	SubscriptionTier string    `json:"subscription_tier"`
	ReferralCode     *string   `json:"referral_code,omitempty"`
	ReferralCount    int       `json:"referral_count"`
	ReferralProgress int       `json:"referral_progress"`
	ReferredBy       *string   `json:"referred_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Credit transaction types.
const (
	TransactionVideoGeneration = "video_generation"
	TransactionReferralBonus   = "referral_bonus"
	TransactionPurchase        = "purchase"
	TransactionRefund          = "refund"
)

// CreditTransaction is an append-only ledger entry.
type CreditTransaction struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Amount          int       `json:"amount"`
	TransactionType string    `json:"transaction_type"`
	Description     string    `json:"description"`
	StripeSessionID *string   `json:"stripe_session_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
