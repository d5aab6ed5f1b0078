package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mina-rz/YogaStudioBack/internal/services"
)

type PassHandler struct {
	service *services.PassService
}

func NewPassHandler(service *services.PassService) *PassHandler {
	return &PassHandler{service: service}
}

func (h *PassHandler) ListMyPasses(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	passes, err := h.service.ListPasses(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list passes"})
	}

	return c.JSON(fiber.Map{"passes": passes})
}
