package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mina-rz/YogaStudioBack/internal/config"
	"github.com/mina-rz/YogaStudioBack/internal/models"
	"github.com/mina-rz/YogaStudioBack/internal/services"
	"go.uber.org/zap"
)

const signatureHeader = "X-Payment-Signature"

type paymentReconciler interface {
	HandlePaymentSucceeded(ctx context.Context, notification services.PaymentNotification) (*models.BookingDetail, error)
}

type WebhookHandler struct {
	service              paymentReconciler
	secret               string
	missingBookingPolicy string
	logger               *zap.SugaredLogger
}

func NewWebhookHandler(service *services.PaymentService, cfg *config.Config, logger *zap.SugaredLogger) *WebhookHandler {
	return &WebhookHandler{
		service:              service,
		secret:               cfg.WebhookSecret,
		missingBookingPolicy: cfg.MissingBookingPolicy,
		logger:               logger,
	}
}

type paymentWebhookRequest struct {
	BookingID         int64   `json:"booking_id" validate:"required,gt=0"`
	AmountCents       int64   `json:"amount_cents" validate:"required,gt=0"`
	Currency          string  `json:"currency" validate:"required,len=3"`
	ExternalSessionID string  `json:"external_session_id" validate:"required"`
	ExternalIntentID  *string `json:"external_intent_id"`
}

// HandlePaymentSucceeded is the reconciliation entry point. The notifier
// retries on anything but 2xx, so the missing-booking policy decides
// whether an unknown booking id is acknowledged (no-op) or rejected.
func (h *WebhookHandler) HandlePaymentSucceeded(c *fiber.Ctx) error {
	body := c.Body()
	if !h.verifySignature(body, c.Get(signatureHeader)) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var req paymentWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	detail, err := h.service.HandlePaymentSucceeded(c.Context(), services.PaymentNotification{
		BookingID:         req.BookingID,
		AmountCents:       req.AmountCents,
		Currency:          req.Currency,
		ExternalSessionID: req.ExternalSessionID,
		ExternalIntentID:  req.ExternalIntentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			if h.missingBookingPolicy == config.MissingBookingAccept {
				h.logger.Warnw("payment notification for unknown booking",
					"booking_id", req.BookingID,
					"external_session_id", req.ExternalSessionID)
				return c.JSON(fiber.Map{"received": true, "ignored": true})
			}
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrInvalidStateTransition):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		default:
			h.logger.Errorw("payment reconciliation failed",
				"booking_id", req.BookingID,
				"external_session_id", req.ExternalSessionID,
				"error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process payment notification"})
		}
	}

	return c.JSON(fiber.Map{"received": true, "booking": detail})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if h.secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
