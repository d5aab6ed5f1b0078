package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mina-rz/YogaStudioBack/internal/config"
	"github.com/mina-rz/YogaStudioBack/internal/models"
	"github.com/mina-rz/YogaStudioBack/internal/services"
	"go.uber.org/zap"
)

type stubPaymentReconciler struct {
	result           *models.BookingDetail
	err              error
	calls            int
	lastNotification services.PaymentNotification
}

func (s *stubPaymentReconciler) HandlePaymentSucceeded(
	_ context.Context,
	notification services.PaymentNotification,
) (*models.BookingDetail, error) {
	s.calls++
	s.lastNotification = notification
	return s.result, s.err
}

const webhookTestSecret = "whsec_test"

func newWebhookTestApp(service paymentReconciler, policy string) *fiber.App {
	handler := &WebhookHandler{
		service:              service,
		secret:               webhookTestSecret,
		missingBookingPolicy: policy,
		logger:               zap.NewNop().Sugar(),
	}

	app := fiber.New()
	app.Post("/api/v1/webhooks/payment", handler.HandlePaymentSucceeded)
	return app
}

func signWebhookBody(body string) string {
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookConfirmsBooking(t *testing.T) {
	service := &stubPaymentReconciler{
		result: &models.BookingDetail{
			Booking: models.Booking{ID: 7, UserID: 42, SessionID: 9, Status: models.BookingStatusConfirmed},
		},
	}
	app := newWebhookTestApp(service, config.MissingBookingAccept)

	body := `{"booking_id": 7, "amount_cents": 1500, "currency": "usd", "external_session_id": "cs_mock_abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, signWebhookBody(body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.calls != 1 {
		t.Fatalf("expected 1 reconciliation call, got %d", service.calls)
	}
	if service.lastNotification.BookingID != 7 ||
		service.lastNotification.ExternalSessionID != "cs_mock_abc" {
		t.Fatalf("unexpected notification forwarding: %+v", service.lastNotification)
	}

	var payload struct {
		Received bool           `json:"received"`
		Booking  map[string]any `json:"booking"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !payload.Received {
		t.Fatalf("expected received true")
	}
	if payload.Booking["status"] != "confirmed" {
		t.Fatalf("expected confirmed booking, got %v", payload.Booking["status"])
	}
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	service := &stubPaymentReconciler{}
	app := newWebhookTestApp(service, config.MissingBookingAccept)

	body := `{"booking_id": 7, "amount_cents": 1500, "currency": "usd", "external_session_id": "cs_mock_abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, "deadbeef")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if service.calls != 0 {
		t.Fatalf("expected no reconciliation call, got %d", service.calls)
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	service := &stubPaymentReconciler{}
	app := newWebhookTestApp(service, config.MissingBookingAccept)

	body := `{"booking_id": 7, "amount_cents": 1500, "currency": "usd", "external_session_id": "cs_mock_abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	service := &stubPaymentReconciler{}
	app := newWebhookTestApp(service, config.MissingBookingAccept)

	body := `{"booking_id": "not-a-number"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, signWebhookBody(body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.calls != 0 {
		t.Fatalf("expected no reconciliation call, got %d", service.calls)
	}
}

func TestWebhookUnknownBookingAcceptPolicy(t *testing.T) {
	service := &stubPaymentReconciler{err: services.ErrBookingNotFound}
	app := newWebhookTestApp(service, config.MissingBookingAccept)

	body := `{"booking_id": 404, "amount_cents": 1500, "currency": "usd", "external_session_id": "cs_mock_gone"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, signWebhookBody(body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Received bool `json:"received"`
		Ignored  bool `json:"ignored"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !payload.Received || !payload.Ignored {
		t.Fatalf("expected acknowledged no-op, got %+v", payload)
	}
}

func TestWebhookUnknownBookingRejectPolicy(t *testing.T) {
	service := &stubPaymentReconciler{err: services.ErrBookingNotFound}
	app := newWebhookTestApp(service, config.MissingBookingReject)

	body := `{"booking_id": 404, "amount_cents": 1500, "currency": "usd", "external_session_id": "cs_mock_gone"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, signWebhookBody(body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestWebhookCancelledBookingIsUnprocessable(t *testing.T) {
	service := &stubPaymentReconciler{err: services.ErrInvalidStateTransition}
	app := newWebhookTestApp(service, config.MissingBookingAccept)

	body := `{"booking_id": 7, "amount_cents": 1500, "currency": "usd", "external_session_id": "cs_mock_abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, signWebhookBody(body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}
