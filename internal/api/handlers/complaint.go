package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/tajious/parkify/internal/middleware"
	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/service"
	"github.com/tajious/parkify/internal/validation"
)

type ComplaintHandler struct {
	complaints *service.ComplaintService
	log        zerolog.Logger
}

func NewComplaintHandler(complaints *service.ComplaintService, log zerolog.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		complaints: complaints,
		log:        log,
	}
}

func (h *ComplaintHandler) Submit(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req models.SubmitComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidBody)
	}
	if req.UserID == 0 || strings.TrimSpace(req.Complain) == "" || strings.TrimSpace(req.Detail) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "All fields are required.")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return err
	}

	complaint, err := h.complaints.Submit(c.UserContext(), claims.SubjectID, req)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return err
		}
		h.log.Error().Err(err).Uint("user_id", claims.SubjectID).Msg("failed to store complaint")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An error occurred while submitting your complaint",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Complaint submitted successfully",
		"id":      complaint.ID,
	})
}
