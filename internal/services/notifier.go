package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type BookingConfirmation struct {
	To        string    `json:"to"`
	ClassName string    `json:"class_name"`
	StartsAt  time.Time `json:"starts_at"`
}

// Notifier delivers booking confirmations. Calls are fire-and-forget from
// the caller's point of view: a delivery failure never rolls back the
// booking it announces.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, confirmation BookingConfirmation) error
}

type HTTPNotifier struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPNotifier(baseURL, apiKey string) *HTTPNotifier {
	return &HTTPNotifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *HTTPNotifier) SendBookingConfirmation(ctx context.Context, confirmation BookingConfirmation) error {
	payload, err := json.Marshal(confirmation)
	if err != nil {
		return fmt.Errorf("encode confirmation: %w", err)
	}

	url := n.baseURL + "/v1/notifications/booking-confirmation"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("send confirmation: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}

// LogNotifier stands in when no notification service is configured.
type LogNotifier struct {
	logger *zap.SugaredLogger
}

func NewLogNotifier(logger *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendBookingConfirmation(_ context.Context, confirmation BookingConfirmation) error {
	n.logger.Infow("booking confirmation",
		"to", confirmation.To,
		"class_name", confirmation.ClassName,
		"starts_at", confirmation.StartsAt)
	return nil
}
