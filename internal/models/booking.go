package models

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

type Booking struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	SessionID int64     `json:"session_id"`
	Status    string    `json:"status"`
	PassID    *int64    `json:"pass_id,omitempty"`
	PaymentID *int64    `json:"payment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Payment struct {
	ID                int64     `json:"id"`
	BookingID         int64     `json:"booking_id"`
	UserID            int64     `json:"user_id"`
	AmountCents       int64     `json:"amount_cents"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	Provider          string    `json:"provider"`
	ExternalSessionID string    `json:"external_session_id"`
	ExternalIntentID  *string   `json:"external_intent_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type BookingDetail struct {
	Booking
	Payment *Payment `json:"payment,omitempty"`
}
