package models

import "time"

const (
	PassTypeCredits   = "credits"
	PassTypeUnlimited = "unlimited"
)

type Pass struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	Type             string     `json:"type"`
	CreditsRemaining *int       `json:"credits_remaining,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
