package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/mina-rz/YogaStudioBack/internal/models"
	"github.com/mina-rz/YogaStudioBack/internal/repository"
	"github.com/mina-rz/YogaStudioBack/internal/services"
)

type stubBookingService struct {
	createResult    *models.BookingDetail
	createErr       error
	cancelResult    *models.BookingDetail
	cancelErr       error
	updateResult    *models.BookingDetail
	updateErr       error
	getResult       *models.BookingDetail
	getErr          error
	listResult      []models.BookingDetail
	listTotal       int
	listErr         error
	lastUserID      int64
	lastActorID     int64
	lastRole        string
	lastBookingID   int64
	lastStatus      string
	lastCreateInput services.CreateBookingInput
	lastListFilter  repository.BookingListFilter
}

func (s *stubBookingService) CreateBooking(
	_ context.Context,
	userID int64,
	input services.CreateBookingInput,
) (*models.BookingDetail, error) {
	s.lastUserID = userID
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubBookingService) CancelBooking(
	_ context.Context,
	actorID int64,
	role string,
	bookingID int64,
) (*models.BookingDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	return s.cancelResult, s.cancelErr
}

func (s *stubBookingService) UpdateStatus(
	_ context.Context,
	actorID int64,
	role string,
	bookingID int64,
	requestedStatus string,
) (*models.BookingDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	s.lastStatus = requestedStatus
	return s.updateResult, s.updateErr
}

func (s *stubBookingService) GetBooking(
	_ context.Context,
	actorID int64,
	role string,
	bookingID int64,
) (*models.BookingDetail, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	return s.getResult, s.getErr
}

func (s *stubBookingService) ListBookings(
	_ context.Context,
	actorID int64,
	role string,
	filter repository.BookingListFilter,
	offset, limit int,
) ([]models.BookingDetail, int, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastListFilter = filter
	return s.listResult, s.listTotal, s.listErr
}

type stubCheckoutService struct {
	result        *services.CheckoutSession
	err           error
	lastActorID   int64
	lastBookingID int64
	lastURLs      services.CheckoutURLs
}

func (s *stubCheckoutService) CreateCheckout(
	_ context.Context,
	actorID int64,
	bookingID int64,
	urls services.CheckoutURLs,
) (*services.CheckoutSession, error) {
	s.lastActorID = actorID
	s.lastBookingID = bookingID
	s.lastURLs = urls
	return s.result, s.err
}

func newBookingTestApp(service bookingApplicationService, checkout checkoutApplicationService, role string, userID string) *fiber.App {
	handler := &BookingHandler{service: service, checkout: checkout}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/bookings", handler.CreateBooking)
	app.Get("/api/v1/bookings", handler.ListBookings)
	app.Get("/api/v1/bookings/:id", handler.GetBooking)
	app.Put("/api/v1/bookings/:id/status", handler.UpdateStatus)
	app.Delete("/api/v1/bookings/:id", handler.CancelBooking)
	app.Post("/api/v1/bookings/:id/checkout", handler.CreateCheckout)
	return app
}

func TestCreateBookingReturnsCreated(t *testing.T) {
	service := &stubBookingService{
		createResult: &models.BookingDetail{
			Booking: models.Booking{ID: 11, UserID: 42, SessionID: 9, Status: models.BookingStatusPending},
		},
	}
	app := newBookingTestApp(service, &stubCheckoutService{}, "user", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings",
		strings.NewReader(`{"session_id": 9}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 {
		t.Fatalf("expected user id 42, got %d", service.lastUserID)
	}
	if service.lastCreateInput.SessionID != 9 || service.lastCreateInput.UsePass {
		t.Fatalf("unexpected create input: %+v", service.lastCreateInput)
	}

	var payload struct {
		Booking map[string]any `json:"booking"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Booking["status"] != "pending" {
		t.Fatalf("expected pending status, got %v", payload.Booking["status"])
	}
}

func TestCreateBookingRejectsMissingSessionID(t *testing.T) {
	service := &stubBookingService{}
	app := newBookingTestApp(service, &stubCheckoutService{}, "user", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateBookingMapsDuplicateToConflict(t *testing.T) {
	service := &stubBookingService{createErr: services.ErrAlreadyBooked}
	app := newBookingTestApp(service, &stubCheckoutService{}, "user", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings",
		strings.NewReader(`{"session_id": 9}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestCreateBookingMapsFullSessionToConflict(t *testing.T) {
	service := &stubBookingService{createErr: services.ErrSessionFull}
	app := newBookingTestApp(service, &stubCheckoutService{}, "user", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings",
		strings.NewReader(`{"session_id": 9, "use_pass": true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if !service.lastCreateInput.UsePass {
		t.Fatalf("expected use_pass to be forwarded")
	}
}

func TestCreateBookingMapsNoUsablePass(t *testing.T) {
	service := &stubBookingService{createErr: services.ErrNoUsablePass}
	app := newBookingTestApp(service, &stubCheckoutService{}, "user", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings",
		strings.NewReader(`{"session_id": 9, "use_pass": true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestGetBookingReturnsNotFound(t *testing.T) {
	service := &stubBookingService{getErr: pgx.ErrNoRows}
	app := newBookingTestApp(service, &stubCheckoutService{}, "user", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/123", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if service.lastBookingID != 123 {
		t.Fatalf("expected booking id 123, got %d", service.lastBookingID)
	}
}

func TestUpdateStatusForwardsActorAndMapsForbidden(t *testing.T) {
	service := &stubBookingService{updateErr: services.ErrForbidden}
	app := newBookingTestApp(service, &stubCheckoutService{}, "user", "42")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/bookings/7/status",
		strings.NewReader(`{"status": "confirmed"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if service.lastActorID != 42 || service.lastRole != "user" {
		t.Fatalf("unexpected actor forwarding: %d %q", service.lastActorID, service.lastRole)
	}
	if service.lastStatus != "confirmed" {
		t.Fatalf("expected status confirmed, got %q", service.lastStatus)
	}
}

func TestCancelBookingReturnsCancelledBooking(t *testing.T) {
	service := &stubBookingService{
		cancelResult: &models.BookingDetail{
			Booking: models.Booking{ID: 7, UserID: 42, SessionID: 9, Status: models.BookingStatusCancelled},
		},
	}
	app := newBookingTestApp(service, &stubCheckoutService{}, "user", "42")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/7", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Booking map[string]any `json:"booking"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Booking["status"] != "cancelled" {
		t.Fatalf("expected cancelled status, got %v", payload.Booking["status"])
	}
}

func TestListBookingsForwardsFilter(t *testing.T) {
	service := &stubBookingService{
		listResult: []models.BookingDetail{
			{Booking: models.Booking{ID: 1, UserID: 42, SessionID: 9, Status: models.BookingStatusConfirmed}},
		},
		listTotal: 1,
	}
	app := newBookingTestApp(service, &stubCheckoutService{}, "admin", "1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?status=confirmed&session_id=9", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastListFilter.Status != "confirmed" || service.lastListFilter.SessionID != 9 {
		t.Fatalf("unexpected filter forwarding: %+v", service.lastListFilter)
	}

	var payload struct {
		Bookings   []map[string]any      `json:"bookings"`
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(payload.Bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(payload.Bookings))
	}
	if payload.Pagination.Total != 1 {
		t.Fatalf("expected total 1, got %d", payload.Pagination.Total)
	}
}

func TestCreateCheckoutReturnsSession(t *testing.T) {
	checkout := &stubCheckoutService{
		result: &services.CheckoutSession{
			ID:          "cs_mock_abc",
			URL:         "http://localhost:8080/mock-checkout/cs_mock_abc",
			AmountCents: 1500,
			Currency:    "usd",
		},
	}
	app := newBookingTestApp(&stubBookingService{}, checkout, "user", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/7/checkout",
		strings.NewReader(`{"success_url": "https://studio.example/ok"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if checkout.lastActorID != 42 || checkout.lastBookingID != 7 {
		t.Fatalf("unexpected forwarding: actor %d booking %d", checkout.lastActorID, checkout.lastBookingID)
	}
	if checkout.lastURLs.SuccessURL != "https://studio.example/ok" {
		t.Fatalf("unexpected success url: %q", checkout.lastURLs.SuccessURL)
	}

	var payload struct {
		Checkout map[string]any `json:"checkout"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Checkout["id"] != "cs_mock_abc" {
		t.Fatalf("unexpected checkout id: %v", payload.Checkout["id"])
	}
}
