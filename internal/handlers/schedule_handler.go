package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mina-rz/YogaStudioBack/internal/models"
	"github.com/mina-rz/YogaStudioBack/internal/repository"
	"github.com/mina-rz/YogaStudioBack/internal/services"
)

type scheduleApplicationService interface {
	ListSessions(ctx context.Context, filter repository.SessionListFilter, offset, limit int) ([]models.SessionDetail, int, error)
	GetSession(ctx context.Context, sessionID int64) (*models.SessionDetail, error)
	GetAvailability(ctx context.Context, sessionID int64) (*models.Availability, error)
	ListClassTypes(ctx context.Context) ([]models.ClassType, error)
	ListInstructors(ctx context.Context) ([]models.Instructor, error)
}

type ScheduleHandler struct {
	service scheduleApplicationService
}

func NewScheduleHandler(service *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

func (h *ScheduleHandler) ListSessions(c *fiber.Ctx) error {
	timeframe := strings.TrimSpace(c.Query("timeframe"))
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timeframe must be upcoming or past"})
	}

	page, limit, offset := parsePagination(c)
	filter := repository.SessionListFilter{
		ClassTypeID:  int64(c.QueryInt("class_type_id", 0)),
		InstructorID: int64(c.QueryInt("instructor_id", 0)),
		Timeframe:    timeframe,
	}

	sessions, total, err := h.service.ListSessions(c.Context(), filter, offset, limit)
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.JSON(fiber.Map{
		"sessions":   sessions,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ScheduleHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.GetSession(c.Context(), sessionID)
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *ScheduleHandler) GetAvailability(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	availability, err := h.service.GetAvailability(c.Context(), sessionID)
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.JSON(fiber.Map{"availability": availability})
}

func (h *ScheduleHandler) ListClassTypes(c *fiber.Ctx) error {
	classTypes, err := h.service.ListClassTypes(c.Context())
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.JSON(fiber.Map{"class_types": classTypes})
}

func (h *ScheduleHandler) ListInstructors(c *fiber.Ctx) error {
	instructors, err := h.service.ListInstructors(c.Context())
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.JSON(fiber.Map{"instructors": instructors})
}

func mapScheduleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	case errors.Is(err, services.ErrClassTypeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class type not found"})
	case errors.Is(err, services.ErrInstructorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Instructor not found"})
	case errors.Is(err, services.ErrClassTypeInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Class type still has sessions"})
	case errors.Is(err, services.ErrInstructorInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Instructor still has sessions"})
	case errors.Is(err, services.ErrSessionHasBookings):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Session still has bookings"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process schedule request"})
	}
}
