package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type CreateCheckoutInput struct {
	BookingID   int64
	UserID      int64
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// CheckoutCreator is the boundary to the payment gateway. The core only
// depends on the returned session shape; confirmation arrives later through
// the payment webhook.
type CheckoutCreator interface {
	Name() string
	CreateSession(ctx context.Context, input CreateCheckoutInput) (*CheckoutSession, error)
}

// MockCheckoutCreator fabricates checkout sessions locally. The generated
// identifiers follow the gateway convention (cs_/pi_ prefixes) so the
// webhook payload shape is identical to the real provider's.
type MockCheckoutCreator struct {
	baseURL string
}

func NewMockCheckoutCreator(baseURL string) *MockCheckoutCreator {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &MockCheckoutCreator{baseURL: strings.TrimRight(baseURL, "/")}
}

func (m *MockCheckoutCreator) Name() string {
	return "mock"
}

func (m *MockCheckoutCreator) CreateSession(_ context.Context, input CreateCheckoutInput) (*CheckoutSession, error) {
	if input.AmountCents <= 0 {
		return nil, ErrInvalidInput
	}

	id := "cs_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return &CheckoutSession{
		ID:          id,
		URL:         fmt.Sprintf("%s/checkout/%s", m.baseURL, id),
		AmountCents: input.AmountCents,
		Currency:    input.Currency,
	}, nil
}

// NewIntentID mirrors the intent identifiers the provider attaches to
// successful payments.
func NewIntentID() string {
	return "pi_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
