package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/mina-rz/YogaStudioBack/internal/repository"
	"github.com/mina-rz/YogaStudioBack/internal/services"
)

type AdminHandler struct {
	schedule *services.ScheduleService
	passes   *services.PassService
	payments *services.PaymentService
	userRepo *repository.UserRepository
}

func NewAdminHandler(
	schedule *services.ScheduleService,
	passes *services.PassService,
	payments *services.PaymentService,
	userRepo *repository.UserRepository,
) *AdminHandler {
	return &AdminHandler{
		schedule: schedule,
		passes:   passes,
		payments: payments,
		userRepo: userRepo,
	}
}

type classTypeRequest struct {
	Name            string  `json:"name" validate:"required,max=120"`
	Description     *string `json:"description"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0"`
	DefaultCapacity int     `json:"default_capacity" validate:"required,gt=0"`
	Difficulty      string  `json:"difficulty" validate:"required,oneof=beginner intermediate advanced all_levels"`
	PriceCents      int64   `json:"price_cents" validate:"gte=0"`
}

type instructorRequest struct {
	UserID    *int64  `json:"user_id" validate:"omitempty,gt=0"`
	FullName  string  `json:"full_name" validate:"required,max=120"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type classSessionRequest struct {
	ClassTypeID  int64   `json:"class_type_id" validate:"required,gt=0"`
	InstructorID int64   `json:"instructor_id" validate:"required,gt=0"`
	StartsAt     string  `json:"starts_at" validate:"required"`
	EndsAt       string  `json:"ends_at" validate:"required"`
	Capacity     int     `json:"capacity" validate:"gte=0"`
	Location     *string `json:"location"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user instructor admin"`
}

type grantPassRequest struct {
	UserID    int64   `json:"user_id" validate:"required,gt=0"`
	Type      string  `json:"type" validate:"required,oneof=credits unlimited"`
	Credits   *int    `json:"credits" validate:"omitempty,gt=0"`
	ExpiresAt *string `json:"expires_at"`
}

func (h *AdminHandler) CreateClassType(c *fiber.Ctx) error {
	var req classTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	classType, err := h.schedule.CreateClassType(c.Context(), classTypeInput(req))
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"class_type": classType})
}

func (h *AdminHandler) UpdateClassType(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class type id"})
	}

	var req classTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	classType, err := h.schedule.UpdateClassType(c.Context(), id, classTypeInput(req))
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.JSON(fiber.Map{"class_type": classType})
}

func (h *AdminHandler) DeleteClassType(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class type id"})
	}
	if err := h.schedule.DeleteClassType(c.Context(), id); err != nil {
		return mapScheduleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) CreateInstructor(c *fiber.Ctx) error {
	var req instructorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	instructor, err := h.schedule.CreateInstructor(c.Context(), instructorInput(req))
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"instructor": instructor})
}

func (h *AdminHandler) UpdateInstructor(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}

	var req instructorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	instructor, err := h.schedule.UpdateInstructor(c.Context(), id, instructorInput(req))
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.JSON(fiber.Map{"instructor": instructor})
}

func (h *AdminHandler) DeleteInstructor(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}
	if err := h.schedule.DeleteInstructor(c.Context(), id); err != nil {
		return mapScheduleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) CreateSession(c *fiber.Ctx) error {
	input := h.parseSessionRequest(c)
	if input == nil {
		return nil
	}

	session, err := h.schedule.CreateSession(c.Context(), *input)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *AdminHandler) UpdateSession(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	input := h.parseSessionRequest(c)
	if input == nil {
		return nil
	}

	session, err := h.schedule.UpdateSession(c.Context(), id, *input)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *AdminHandler) DeleteSession(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}
	if err := h.schedule.DeleteSession(c.Context(), id); err != nil {
		return mapScheduleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, limit, offset := parsePagination(c)

	users, err := h.userRepo.List(c.Context(), offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list users"})
	}
	total, err := h.userRepo.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list users"})
	}

	return c.JSON(fiber.Map{
		"users":      users,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.userRepo.UpdateRole(c.Context(), id, req.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update role"})
	}

	return c.JSON(fiber.Map{"user": user})
}

func (h *AdminHandler) GrantPass(c *fiber.Ctx) error {
	var req grantPassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.ExpiresAt))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expires_at must be a valid RFC3339 timestamp"})
		}
		expiresAt = &parsed
	}

	pass, err := h.passes.GrantPass(c.Context(), services.GrantPassInput{
		UserID:    req.UserID,
		Type:      req.Type,
		Credits:   req.Credits,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to grant pass"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"pass": pass})
}

func (h *AdminHandler) ListPayments(c *fiber.Ctx) error {
	page, limit, offset := parsePagination(c)

	payments, total, err := h.payments.ListPayments(c.Context(), offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list payments"})
	}

	return c.JSON(fiber.Map{
		"payments":   payments,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

// parseSessionRequest writes the error response itself and returns nil on
// invalid input.
func (h *AdminHandler) parseSessionRequest(c *fiber.Ctx) *repository.CreateClassSessionInput {
	var req classSessionRequest
	if err := c.BodyParser(&req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		return nil
	}
	if err := validateStruct(req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		return nil
	}

	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartsAt))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "starts_at must be a valid RFC3339 timestamp"})
		return nil
	}
	endsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndsAt))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ends_at must be a valid RFC3339 timestamp"})
		return nil
	}
	if !endsAt.After(startsAt) {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ends_at must be after starts_at"})
		return nil
	}

	return &repository.CreateClassSessionInput{
		ClassTypeID:  req.ClassTypeID,
		InstructorID: req.InstructorID,
		StartsAt:     startsAt.UTC(),
		EndsAt:       endsAt.UTC(),
		Capacity:     req.Capacity,
		Location:     req.Location,
	}
}

func classTypeInput(req classTypeRequest) repository.CreateClassTypeInput {
	return repository.CreateClassTypeInput{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		DefaultCapacity: req.DefaultCapacity,
		Difficulty:      req.Difficulty,
		PriceCents:      req.PriceCents,
	}
}

func instructorInput(req instructorRequest) repository.CreateInstructorInput {
	return repository.CreateInstructorInput{
		UserID:    req.UserID,
		FullName:  strings.TrimSpace(req.FullName),
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	}
}
