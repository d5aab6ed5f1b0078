package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/mina-rz/YogaStudioBack/internal/models"
	"github.com/mina-rz/YogaStudioBack/internal/repository"
	"github.com/mina-rz/YogaStudioBack/internal/services"
)

type bookingApplicationService interface {
	CreateBooking(ctx context.Context, userID int64, input services.CreateBookingInput) (*models.BookingDetail, error)
	CancelBooking(ctx context.Context, actorID int64, role string, bookingID int64) (*models.BookingDetail, error)
	UpdateStatus(ctx context.Context, actorID int64, role string, bookingID int64, requestedStatus string) (*models.BookingDetail, error)
	GetBooking(ctx context.Context, actorID int64, role string, bookingID int64) (*models.BookingDetail, error)
	ListBookings(ctx context.Context, actorID int64, role string, filter repository.BookingListFilter, offset, limit int) ([]models.BookingDetail, int, error)
}

type checkoutApplicationService interface {
	CreateCheckout(ctx context.Context, actorID int64, bookingID int64, urls services.CheckoutURLs) (*services.CheckoutSession, error)
}

type BookingHandler struct {
	service  bookingApplicationService
	checkout checkoutApplicationService
}

func NewBookingHandler(service *services.BookingService, checkout *services.PaymentService) *BookingHandler {
	return &BookingHandler{service: service, checkout: checkout}
}

type createBookingRequest struct {
	SessionID int64 `json:"session_id" validate:"required,gt=0"`
	UsePass   bool  `json:"use_pass"`
}

type updateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type createCheckoutRequest struct {
	SuccessURL string `json:"success_url" validate:"omitempty,url"`
	CancelURL  string `json:"cancel_url" validate:"omitempty,url"`
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	detail, err := h.service.CreateBooking(c.Context(), userID, services.CreateBookingInput{
		SessionID: req.SessionID,
		UsePass:   req.UsePass,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": detail})
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	page, limit, offset := parsePagination(c)
	filter := repository.BookingListFilter{
		Status:    c.Query("status"),
		SessionID: int64(c.QueryInt("session_id", 0)),
	}

	details, total, err := h.service.ListBookings(c.Context(), userID, role, filter, offset, limit)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{
		"bookings":   details,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	detail, err := h.service.GetBooking(c.Context(), userID, role, bookingID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"booking": detail})
}

func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req updateBookingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	detail, err := h.service.UpdateStatus(c.Context(), userID, role, bookingID, req.Status)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"booking": detail})
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := c.Locals("role").(string)

	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	detail, err := h.service.CancelBooking(c.Context(), userID, role, bookingID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"booking": detail})
}

func (h *BookingHandler) CreateCheckout(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req createCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session, err := h.checkout.CreateCheckout(c.Context(), userID, bookingID, services.CheckoutURLs{
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"checkout": session})
}

func mapBookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	case errors.Is(err, services.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	case errors.Is(err, services.ErrAlreadyBooked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You already hold a booking for this session"})
	case errors.Is(err, services.ErrSessionFull):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This class is full"})
	case errors.Is(err, services.ErrNoUsablePass):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "No usable pass"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process booking request"})
	}
}
